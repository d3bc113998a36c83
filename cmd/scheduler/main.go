// Command scheduler runs the scrape pipeline on a fixed interval, standing
// in for an external job runner. Every tick is a complete run with freshly
// loaded config and store; ticks never overlap.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/robfig/cron/v3"

	"pararius-alerts/config"
	"pararius-alerts/notifier"
	"pararius-alerts/scraper/pararius"
	"pararius-alerts/services"
	"pararius-alerts/storage"
	"pararius-alerts/utils"
)

func main() {
	logger := utils.NewLogger(os.Getenv("DEBUG") != "")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	// Fail fast on unusable config before scheduling anything.
	if _, err := config.Load(configPath); err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	interval := intervalHours()
	logger.Info("=== Pararius alerts scheduler starting — one run every %dh ===", interval)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %dh", interval), func() {
		runOnce(configPath, logger)
	}); err != nil {
		logger.Error("Failed to schedule runs: %v", err)
		os.Exit(1)
	}

	// Run immediately on startup; the feed should not wait for the first tick.
	runOnce(configPath, logger)
	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down — waiting for any running scrape to finish")
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
}

// runOnce executes one full pipeline run exactly as the single-shot binary
// would: config and store are loaded per run, so edits to config.yaml take
// effect on the next tick without a restart.
func runOnce(configPath string, logger *utils.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("[scheduler] Config reload failed — skipping this run: %v", err)
		return
	}

	store, err := storage.NewListingStore(filepath.Join(cfg.DataDir, "listings.json"), logger)
	if err != nil {
		logger.Error("[scheduler] Store load failed — skipping this run: %v", err)
		return
	}

	var archive storage.Archiver
	if cfg.ArchiveDSN != "" {
		pg, err := storage.NewPostgresArchive(cfg.ArchiveDSN)
		if err != nil {
			logger.Warn("[scheduler] Archive disabled for this run: %v", err)
		} else {
			defer pg.Close()
			archive = pg
		}
	}

	pipeline := services.NewPipeline(cfg, logger, store,
		pararius.New(cfg, logger), notifier.New(cfg, logger), archive)
	if _, err := pipeline.Run(); err != nil {
		logger.Error("[scheduler] Run failed: %v", err)
	}
}

func intervalHours() int {
	if v := os.Getenv("SCRAPE_INTERVAL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 6
}
