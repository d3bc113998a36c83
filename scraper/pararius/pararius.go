package pararius

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pararius-alerts/config"
	"pararius-alerts/models"
	"pararius-alerts/utils"
)

const (
	baseURL     = "https://www.pararius.com"
	searchPath  = "/apartments"
	httpTimeout = 15 * time.Second
)

// Scraper fetches and parses Pararius search results for the configured
// cities. Fetching is strictly sequential: one run owns the whole scrape,
// and the per-request delay keeps the crawl polite.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	client *http.Client
	retry  *utils.RetryConfig
	base   string
	sleep  func(time.Duration)
}

// New creates a ready-to-use Pararius scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: httpTimeout},
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
			Retryable:   retryable,
		},
		base:  baseURL,
		sleep: time.Sleep,
	}
}

// ScrapeAll walks every configured city in order and returns the combined
// listings plus the per-item failure counts accumulated along the way. The
// returned error is non-nil only for failures that would break every
// remaining fetch the same way (DNS resolution, for one).
func (s *Scraper) ScrapeAll() ([]models.Listing, *models.ScrapeReport, error) {
	report := &models.ScrapeReport{}
	var all []models.Listing

	for _, city := range s.cfg.Cities {
		s.logger.Info("[scraper] Scraping listings for %s", city)
		listings, err := s.ScrapeCity(city, report)
		if err != nil {
			return nil, report, fmt.Errorf("scrape %s: %w", city, err)
		}
		all = append(all, listings...)
	}

	s.logger.Info("[scraper] Scrape complete — %d listings from %d cities (%d fetch errors, %d parse errors)",
		len(all), len(s.cfg.Cities), report.FetchErrors, report.ParseErrors)
	return all, report, nil
}

// ScrapeCity pages through one city's search results, at most MaxPages deep.
// A page that keeps failing after retries is recorded on the report and
// skipped; the walk stops early on an empty page, on a page that yields no
// unseen listings, or when the next-page link disappears.
func (s *Scraper) ScrapeCity(city string, report *models.ScrapeReport) ([]models.Listing, error) {
	var listings []models.Listing
	seen := make(map[string]bool)

	for page := 1; page <= s.cfg.MaxPages; page++ {
		url := s.searchURL(city, page)
		doc, err := s.fetchDocument(url)
		if err != nil {
			if isFatal(err) {
				return nil, err
			}
			report.FetchErrors++
			report.Record(fmt.Sprintf("%s page %d: %v", city, page, err))
			s.logger.Error("[scraper] Page %d for %s failed after retries — skipping: %v", page, city, err)
			continue
		}
		report.PagesFetched++

		pageListings, dropped := parseListings(doc, city)
		if dropped > 0 {
			report.ParseErrors += dropped
			report.Record(fmt.Sprintf("%s page %d: %d unparseable listings dropped", city, page, dropped))
			s.logger.Warn("[scraper] Dropped %d unparseable listings on %s page %d", dropped, city, page)
		}

		if len(pageListings) == 0 {
			s.logger.Info("[scraper] No listings on %s page %d — stopping", city, page)
			break
		}

		fresh := 0
		for _, l := range pageListings {
			if seen[l.ID] {
				continue
			}
			seen[l.ID] = true
			listings = append(listings, l)
			fresh++
		}
		s.logger.Debug("[scraper] %s page %d: %d listings, %d unseen", city, page, len(pageListings), fresh)

		if fresh == 0 {
			s.logger.Info("[scraper] %s page %d repeats already-seen listings — stopping", city, page)
			break
		}
		if !hasNextPage(doc) {
			s.logger.Info("[scraper] Last results page for %s is page %d", city, page)
			break
		}
	}

	s.logger.Info("[scraper] %s done — %d listings collected", city, len(listings))
	return listings, nil
}

func (s *Scraper) searchURL(city string, page int) string {
	return buildSearchURL(s.base, s.cfg, city, page)
}

// fetchDocument GETs url through the retry policy and parses the response
// body. Every successful request is followed by the configured delay.
func (s *Scraper) fetchDocument(url string) (*goquery.Document, error) {
	var doc *goquery.Document

	err := s.retry.Do("fetch "+url, func() error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", s.cfg.UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &statusError{code: resp.StatusCode}
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("parse html: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sleep(time.Duration(s.cfg.RequestDelayMs) * time.Millisecond)
	return doc, nil
}

func hasNextPage(doc *goquery.Document) bool {
	return doc.Find(".pagination__link--next").Length() > 0
}

// statusError is a non-success HTTP response. Rate limits and server errors
// are worth retrying; other client errors will fail identically on the same
// URL and stop the attempt loop.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

func (e *statusError) transient() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// retryable classifies fetch errors for the retry policy.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.transient()
	}
	return !isFatal(err)
}

// isFatal reports whether an error would make every subsequent fetch fail
// the same way. DNS resolution failure is the canonical case: retrying or
// moving on to the next page cannot help, so the whole run aborts.
func isFatal(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
