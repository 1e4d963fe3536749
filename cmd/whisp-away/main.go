package main

import (
	"fmt"
	"os"

	"github.com/Nikola-Milovic/whisp-away/config"
	"github.com/Nikola-Milovic/whisp-away/internal/app"
	"github.com/Nikola-Milovic/whisp-away/internal/cli"
	"github.com/Nikola-Milovic/whisp-away/internal/logging"
	"github.com/Nikola-Milovic/whisp-away/internal/output"
)

func main() {
	if err := run(); err != nil {
		formatter := output.NewFormatter(os.Stderr)
		formatter.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}

	deps := &cli.Dependencies{
		App:    application,
		Config: cfg,
	}

	return cli.NewRootCmd(deps).Execute()
}
