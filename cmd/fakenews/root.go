package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/DSdoesVS/fake-news-detector/internal/app"
	"github.com/DSdoesVS/fake-news-detector/internal/config"
	"github.com/DSdoesVS/fake-news-detector/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "fakenews",
	Short:         "Fake news detection service",
	Long:          "Trains and serves a TF-IDF logistic-regression classifier for news articles.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// buildApp assembles the application from config and environment.
func buildApp() (*app.Application, *slog.Logger, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)
	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application, logger, nil
}
