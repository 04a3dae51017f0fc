package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/jyotish-atlas/pkg/app"
	"github.com/de-tools/jyotish-atlas/pkg/config"
	"github.com/de-tools/jyotish-atlas/pkg/runtime/terminal"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("JYOTISH_CONFIG"))
	if err != nil {
		return err
	}

	logger := app.NewLogger(os.Stderr, cfg.Log.Level)
	ctx := logger.WithContext(context.Background())

	deps, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	cli := terminal.NewCLI(terminal.Options{
		Runner: deps.Service,
		Output: os.Stdout,
	})
	return cli.ExecuteContext(ctx)
}
