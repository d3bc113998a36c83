package services

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"pararius-alerts/config"
	"pararius-alerts/models"
	"pararius-alerts/storage"
	"pararius-alerts/utils"
)

// Scraper produces one run's listings. ScrapeAll returns a non-nil report
// even on error; the error is non-nil only for failures that invalidate the
// whole run. FetchDetails is best-effort enrichment for notifications.
type Scraper interface {
	ScrapeAll() ([]models.Listing, *models.ScrapeReport, error)
	FetchDetails(url string) (*models.ListingDetails, error)
}

// Notifier delivers one notification per listing. A nil return means the
// delivery was confirmed (or notifications are disabled); the caller owns
// flipping the stored notified flag.
type Notifier interface {
	Notify(l models.StoredListing, details *models.ListingDetails) error
}

// Pipeline sequences one full run: scrape, filter, diff, insert, notify,
// prune, persist, record. One pipeline owns one store for one run; there is
// no mid-run cancellation, termination before the first persist simply
// leaves the on-disk store at its previous state.
type Pipeline struct {
	cfg      *config.Config
	logger   *utils.Logger
	store    *storage.ListingStore
	scraper  Scraper
	notifier Notifier
	archive  storage.Archiver
	now      func() time.Time
}

// NewPipeline wires a pipeline from its collaborators. archive may be nil
// when no long-term archive is configured.
func NewPipeline(cfg *config.Config, logger *utils.Logger, store *storage.ListingStore,
	scraper Scraper, notifier Notifier, archive storage.Archiver) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		scraper:  scraper,
		notifier: notifier,
		archive:  archive,
		now:      time.Now,
	}
}

// Run executes the pipeline once and appends the run's statistics to the
// log whether it succeeded or not. The returned error is the fatal run
// error, if any; per-item failures only show up in the stats.
func (p *Pipeline) Run() (*models.RunStats, error) {
	start := p.now()
	stats := &models.RunStats{Timestamp: start}

	runErr := p.run(stats)
	if runErr != nil {
		stats.Errors = append(stats.Errors, runErr.Error())
		p.logger.Error("[pipeline] Run failed: %v", runErr)
	}
	stats.Success = runErr == nil
	stats.DurationSeconds = p.now().Sub(start).Seconds()

	// Statistics are best-effort: store and notification state already
	// happened and must not be rolled back over a logging failure.
	if err := storage.AppendRunStats(p.statsPath(), stats); err != nil {
		p.logger.Error("[pipeline] Could not append run statistics: %v", err)
	}

	p.logSummary(stats)
	return stats, runErr
}

func (p *Pipeline) run(stats *models.RunStats) error {
	scraped, report, err := p.scraper.ScrapeAll()
	stats.FetchErrors = report.FetchErrors
	stats.ParseErrors = report.ParseErrors
	stats.Errors = append(stats.Errors, report.Errors...)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	stats.TotalScraped = len(scraped)

	if err := storage.WriteSnapshot(p.snapshotPath(), scraped); err != nil {
		p.logger.Warn("[pipeline] Could not write scrape snapshot: %v", err)
	}

	var matched []models.Listing
	for _, l := range scraped {
		if MatchesFilter(l, p.cfg) {
			matched = append(matched, l)
		}
	}
	p.logger.Info("[pipeline] %d of %d scraped listings match the search constraints", len(matched), len(scraped))

	diff := Diff(matched, p.store)
	stats.NewCount = len(diff.New)
	p.logger.Info("[pipeline] %d new listings, %d already known", len(diff.New), len(diff.Known))

	now := p.now()
	inserted := make([]models.StoredListing, 0, len(diff.New))
	for _, l := range diff.New {
		record, err := p.store.UpsertNew(l, now)
		if err != nil {
			// Diff guarantees these ids are absent; a duplicate here is a bug.
			return fmt.Errorf("insert %s: %w", l.ID, err)
		}
		inserted = append(inserted, record)
	}

	// New listings must be durable before any dispatch. A crash after this
	// save can only leave un-notified records behind for the next run to
	// deliver; it can never re-insert them as new.
	if len(inserted) > 0 {
		if err := p.store.Save(); err != nil {
			return err
		}
	}

	p.notifyPending(stats)

	pruned := p.store.Prune(now, time.Duration(p.cfg.MaxListingAgeDays)*24*time.Hour)
	stats.PrunedCount = len(pruned)

	if err := p.store.Save(); err != nil {
		return err
	}

	if p.archive != nil && len(inserted) > 0 {
		if err := p.archive.Archive(inserted); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("archive: %v", err))
			p.logger.Warn("[pipeline] Archive failed: %v", err)
		} else {
			p.logger.Info("[pipeline] Archived %d new listings", len(inserted))
		}
	}

	return nil
}

// notifyPending dispatches an issue for every stored listing not yet
// notified: this run's inserts plus whatever earlier runs failed to deliver.
// Oldest first, so leftovers drain before this run's batch. The store is
// persisted after every confirmed dispatch; a crash mid-loop costs at most
// re-sending nothing and re-trying the rest next run.
func (p *Pipeline) notifyPending(stats *models.RunStats) {
	var pending []models.StoredListing
	for _, r := range p.store.All() {
		if !r.Notified {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		p.logger.Info("[pipeline] No listings awaiting notification")
		return
	}

	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].FirstSeen.Equal(pending[j].FirstSeen) {
			return pending[i].FirstSeen.Before(pending[j].FirstSeen)
		}
		return pending[i].ID < pending[j].ID
	})
	p.logger.Info("[pipeline] %d listings awaiting notification", len(pending))

	for _, r := range pending {
		details := p.fetchDetails(r.URL)
		if err := p.notifier.Notify(r, details); err != nil {
			stats.NotifyErrors++
			stats.Errors = append(stats.Errors, err.Error())
			p.logger.Error("[pipeline] Notification for %s failed — will retry next run: %v", r.ID, err)
			continue
		}
		if err := p.store.MarkNotified(r.ID); err != nil {
			p.logger.Error("[pipeline] Could not mark %s notified: %v", r.ID, err)
			continue
		}
		stats.NotifiedCount++
		if err := p.store.Save(); err != nil {
			p.logger.Error("[pipeline] Could not persist after notifying %s: %v", r.ID, err)
		}
	}
}

func (p *Pipeline) fetchDetails(url string) *models.ListingDetails {
	details, err := p.scraper.FetchDetails(url)
	if err != nil {
		p.logger.Warn("[pipeline] No details for %s — notifying with card fields only: %v", url, err)
		return nil
	}
	return details
}

func (p *Pipeline) statsPath() string {
	return filepath.Join(p.cfg.DataDir, "run_stats.json")
}

func (p *Pipeline) snapshotPath() string {
	return filepath.Join(p.cfg.DataDir, "latest_listings.json")
}

func (p *Pipeline) logSummary(stats *models.RunStats) {
	p.logger.Info("[pipeline] Run finished — success: %t | scraped: %d | new: %d | notified: %d | pruned: %d | errors: %d (%.2fs)",
		stats.Success, stats.TotalScraped, stats.NewCount, stats.NotifiedCount,
		stats.PrunedCount, len(stats.Errors), stats.DurationSeconds)
}
