package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "JYOTISH"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Location LocationConfig `mapstructure:"location"`
	Export   ExportConfig   `mapstructure:"export"`
	Storage  StorageConfig  `mapstructure:"storage"`
	S3       S3Config       `mapstructure:"s3"`
	NATS     NATSConfig     `mapstructure:"nats"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// APIKeyHash is a bcrypt hash; empty disables the X-API-Key check.
	APIKeyHash string `mapstructure:"api_key_hash"`
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ChartConfig struct {
	Zodiac string `mapstructure:"zodiac"`
}

type LocationConfig struct {
	GazetteerPath     string        `mapstructure:"gazetteer_path"`
	GeocoderURL       string        `mapstructure:"geocoder_url"`
	GeocoderUserAgent string        `mapstructure:"geocoder_user_agent"`
	GeocoderTimeout   time.Duration `mapstructure:"geocoder_timeout"`
	GeocodeCacheTTL   time.Duration `mapstructure:"geocode_cache_ttl"`
	// WatchGazetteer reloads the gazetteer file when it changes on disk.
	WatchGazetteer bool `mapstructure:"watch_gazetteer"`
	// DefaultCoordinates ("lat,lon") are used for places nothing else resolves.
	DefaultCoordinates string `mapstructure:"default_coordinates"`
	// Strict rejects unresolvable places instead of using DefaultCoordinates.
	Strict bool `mapstructure:"strict"`
}

type ExportConfig struct {
	OutputDir   string `mapstructure:"output_dir"`
	RichFormats bool   `mapstructure:"rich_formats"`
}

type StorageConfig struct {
	DbPath string `mapstructure:"db_path"`
}

type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
	Profile  string `mapstructure:"profile"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.api_key_hash", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("chart.zodiac", "tropical")
	v.SetDefault("location.gazetteer_path", "")
	v.SetDefault("location.geocoder_url", "")
	v.SetDefault("location.geocoder_user_agent", "jyotish-atlas")
	v.SetDefault("location.geocoder_timeout", 5*time.Second)
	v.SetDefault("location.geocode_cache_ttl", 30*24*time.Hour)
	v.SetDefault("location.watch_gazetteer", true)
	v.SetDefault("location.default_coordinates", "24.8607,67.0011")
	v.SetDefault("location.strict", false)
	v.SetDefault("export.output_dir", "reports")
	v.SetDefault("export.rich_formats", true)
	v.SetDefault("storage.db_path", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "reports/")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.profile", "")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "jyotish.analysis.completed")
}

// Load reads defaults, then the optional file at path, then JYOTISH_* environment
// variables (e.g. JYOTISH_SERVER_PORT), each overriding the previous.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.Chart.Zodiac {
	case "tropical", "lahiri":
	default:
		return fmt.Errorf("invalid chart.zodiac %q: expected tropical or lahiri", c.Chart.Zodiac)
	}
	return nil
}
