package main

import (
	"fmt"
	"os"
	"path/filepath"

	"pararius-alerts/config"
	"pararius-alerts/notifier"
	"pararius-alerts/scraper/pararius"
	"pararius-alerts/services"
	"pararius-alerts/storage"
	"pararius-alerts/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := utils.NewLogger(os.Getenv("DEBUG") != "")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		return 1
	}

	logger.Info("=== Pararius apartment alerts starting ===")
	github := notifier.New(cfg, logger)
	logger.Info("Config — cities: %v | max pages: %d | retention: %dd | notifications enabled: %t",
		cfg.Cities, cfg.MaxPages, cfg.MaxListingAgeDays, github.Enabled())

	storePath := filepath.Join(cfg.DataDir, "listings.json")
	store, err := storage.NewListingStore(storePath, logger)
	if err != nil {
		logger.Error("Failed to load listing store: %v", err)
		return 1
	}

	// The Postgres archive is an optional extra sink; a missing database
	// never blocks the run.
	var archive storage.Archiver
	if cfg.ArchiveDSN != "" {
		pg, err := storage.NewPostgresArchive(cfg.ArchiveDSN)
		if err != nil {
			logger.Warn("Archive disabled — could not connect to PostgreSQL: %v", err)
		} else {
			defer pg.Close()
			archive = pg
		}
	}

	scraper := pararius.New(cfg, logger)
	pipeline := services.NewPipeline(cfg, logger, store, scraper, github, archive)

	stats, err := pipeline.Run()
	if err != nil {
		return 1
	}

	summary := services.NewSummaryService(logger)
	summary.Print(summary.Generate(store.All()))

	fmt.Printf("  Done. %d new listings, %d notified → %s\n\n",
		stats.NewCount, stats.NotifiedCount, storePath)
	return 0
}
