package models

import "time"

// RunStats summarizes one pipeline execution. Entries are appended to the
// run-statistics log and never mutated afterwards.
type RunStats struct {
	Timestamp       time.Time `json:"timestamp"`
	Success         bool      `json:"success"`
	TotalScraped    int       `json:"total_scraped"`
	NewCount        int       `json:"new_listings_count"`
	NotifiedCount   int       `json:"notified_count"`
	PrunedCount     int       `json:"pruned_count"`
	FetchErrors     int       `json:"fetch_errors"`
	ParseErrors     int       `json:"parse_errors"`
	NotifyErrors    int       `json:"notify_errors"`
	DurationSeconds float64   `json:"duration_seconds"`
	Errors          []string  `json:"errors,omitempty"`
}

// ScrapeReport carries the non-fatal failure counts accumulated while
// scraping. A bad page or a bad listing lands here instead of aborting
// the run.
type ScrapeReport struct {
	PagesFetched int
	FetchErrors  int
	ParseErrors  int
	Errors       []string
}

// Record appends a per-item error message.
func (r *ScrapeReport) Record(msg string) {
	r.Errors = append(r.Errors, msg)
}

// SummaryReport holds the computed overview of the listing store, rendered
// to the console at the end of a run.
type SummaryReport struct {
	TotalStored    int
	AwaitingNotify int
	AverageRent    float64
	MinRent        float64
	MaxRent        float64
	Cheapest       *Listing
	ListingsByCity map[string]int
}
