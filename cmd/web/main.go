package main

import (
	"fmt"
	"os"

	"github.com/de-tools/jyotish-atlas/pkg/app"
	"github.com/de-tools/jyotish-atlas/pkg/config"
	"github.com/de-tools/jyotish-atlas/pkg/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Jyotish Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a YAML config file (optional; JYOTISH_* environment variables override it)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := app.NewLogger(os.Stdout, cfg.Log.Level)
	ctx := logger.WithContext(cmd.Context())

	deps, err := app.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer deps.Close()

	logger.Info().
		Str("zodiac", cfg.Chart.Zodiac).
		Str("output_dir", cfg.Export.OutputDir).
		Bool("api_key", cfg.Server.APIKeyHash != "").
		Msg("configuration loaded")

	api := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		APIKeyHash:      cfg.Server.APIKeyHash,
		Dependencies: server.Dependencies{
			Runner:  deps.Service,
			Metrics: deps.Metrics,
		},
	})

	return api.Start()
}
