package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoFile_UsesDefaults(t *testing.T) {
	// When
	cfg, err := Load("")

	// Then
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "tropical", cfg.Chart.Zodiac)
	assert.Equal(t, "reports", cfg.Export.OutputDir)
	assert.True(t, cfg.Export.RichFormats)
	assert.Equal(t, "jyotish.analysis.completed", cfg.NATS.Subject)
	assert.Empty(t, cfg.Server.APIKeyHash)
	assert.Equal(t, "24.8607,67.0011", cfg.Location.DefaultCoordinates)
	assert.False(t, cfg.Location.Strict)
}

func TestLoad_ValidYAML_OverridesDefaults(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "jyotish.yaml")
	content := `server:
  port: 9090
  shutdown_timeout: 3s
chart:
  zodiac: lahiri
export:
  output_dir: /tmp/out
  rich_formats: false
location:
  gazetteer_path: places.ini`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When
	cfg, err := Load(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "lahiri", cfg.Chart.Zodiac)
	assert.Equal(t, "/tmp/out", cfg.Export.OutputDir)
	assert.False(t, cfg.Export.RichFormats)
	assert.Equal(t, "places.ini", cfg.Location.GazetteerPath)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "jyotish.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))
	t.Setenv("JYOTISH_SERVER_PORT", "7070")
	t.Setenv("JYOTISH_NATS_URL", "nats://localhost:4222")
	t.Setenv("JYOTISH_LOCATION_STRICT", "true")

	// When
	cfg, err := Load(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.True(t, cfg.Location.Strict)
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: port: 80: bad"), 0o644))

	// When
	_, err := Load(path)

	// Then
	assert.Error(t, err)
}

func TestLoad_MissingFile_ReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "unknown zodiac", mutate: func(c *Config) { c.Chart.Zodiac = "draconic" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
