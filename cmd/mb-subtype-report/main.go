// Command mb-subtype-report reconciles pathology-reviewed medulloblastoma
// subtypes with classifier predictions and generates the concordance report.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/aadamk/OpenPedCan-analysis/internal/api"
	"github.com/aadamk/OpenPedCan-analysis/internal/archive"
	"github.com/aadamk/OpenPedCan-analysis/internal/config"
	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
	"github.com/aadamk/OpenPedCan-analysis/internal/pipeline"
)

const version = "1.2.0"

func main() {
	command := "run"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "version", "--version", "-v":
		fmt.Printf("mb-subtype-report %s\n", version)
		return
	case "help", "--help", "-h":
		showHelp()
		return
	}

	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	switch command {
	case "run":
		runReport(logger, cfg)
	case "serve":
		serveReport(logger, cfg)
	case "runs":
		listRuns(logger, cfg)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		showHelp()
		os.Exit(2)
	}
}

// runReport executes one report generation and prints the accuracy summary.
func runReport(logger *logrus.Logger, cfg *domain.Config) {
	result, err := pipeline.New(logger, cfg).Run(context.Background())
	if err != nil {
		logger.WithError(err).Fatal("Report generation failed")
	}

	for _, r := range result.Classifiers {
		if r.AccuracyPct == "" {
			fmt.Printf("%s: Accuracy: undefined (no samples with pathology data)\n", r.Classifier)
			continue
		}
		fmt.Printf("%s: Accuracy: %s\n", r.Classifier, r.AccuracyPct)
	}
	fmt.Printf("Report: %s\nExport: %s\n", result.ReportPath, result.ExportPath)
	if result.Run != nil {
		fmt.Printf("Archived as run %s\n", result.Run.ID)
	}
}

// serveReport starts the read-only report server until interrupted.
func serveReport(logger *logrus.Logger, cfg *domain.Config) {
	var store *archive.SQLiteStore
	if cfg.Archive.Enabled {
		var err error
		if store, err = archive.NewSQLiteStore(cfg.Archive.Path); err != nil {
			logger.WithError(err).Fatal("Failed to open run archive")
		}
		defer store.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := api.NewServer(logger, cfg, store).Start(ctx); err != nil {
		logger.WithError(err).Fatal("Report server failed")
	}
}

// listRuns prints the archived runs, most recent first.
func listRuns(logger *logrus.Logger, cfg *domain.Config) {
	if !cfg.Archive.Enabled {
		logger.Fatal("Run archive is disabled in configuration")
	}
	store, err := archive.NewSQLiteStore(cfg.Archive.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open run archive")
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), 50)
	if err != nil {
		logger.WithError(err).Fatal("Failed to list runs")
	}
	if len(runs) == 0 {
		fmt.Println("No archived runs")
		return
	}
	for _, run := range runs {
		accuracies := make([]string, 0, len(run.Accuracies))
		for classifier, pct := range run.Accuracies {
			if pct == "" {
				pct = "undefined"
			}
			accuracies = append(accuracies, fmt.Sprintf("%s=%s", classifier, pct))
		}
		fmt.Printf("%s  %s  primary=%s samples=%d  %s\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Primary, run.Samples,
			strings.Join(accuracies, " "))
	}
}

// newLogger builds the process logger from configuration.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.Output == "stdout" {
		logger.SetOutput(os.Stdout)
	} else {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// showHelp displays usage information.
func showHelp() {
	help := `
Medulloblastoma Subtype Concordance Report

Usage:
  mb-subtype-report [command]

Commands:
  run      Generate the concordance report (default)
  serve    Serve the generated report and the run archive API
  runs     List archived report runs
  version  Print the version
  help     Show this help

Configuration is read from config.yaml (working directory, ./config or
/etc/mb-subtype-report), overridable via OPC_MB_* environment variables.
`
	fmt.Println(help)
}
