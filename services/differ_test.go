package services

import (
	"path/filepath"
	"testing"
	"time"

	"pararius-alerts/models"
	"pararius-alerts/storage"
	"pararius-alerts/utils"
)

func newTestStore(t *testing.T) *storage.ListingStore {
	t.Helper()
	s, err := storage.NewListingStore(filepath.Join(t.TempDir(), "listings.json"), utils.NewLogger(false))
	if err != nil {
		t.Fatalf("NewListingStore: %v", err)
	}
	return s
}

func TestDiffPartitionsByIdentity(t *testing.T) {
	store := newTestStore(t)
	store.UpsertNew(models.Listing{ID: "known1", Price: f64(1000)}, time.Now())

	scraped := []models.Listing{
		{ID: "known1", Price: f64(1250)}, // price drifted; identity unchanged
		{ID: "new1"},
		{ID: "new2"},
	}

	result := Diff(scraped, store)
	if len(result.New) != 2 || result.New[0].ID != "new1" || result.New[1].ID != "new2" {
		t.Errorf("New = %v; want [new1 new2] in scrape order", result.New)
	}
	if len(result.Known) != 1 || result.Known[0].ID != "known1" {
		t.Errorf("Known = %v; want [known1]", result.Known)
	}
	if store.Len() != 1 {
		t.Errorf("Diff mutated the store: Len() = %d; want 1", store.Len())
	}
}

func TestDiffBatchDuplicateKeepsFirstOccurrence(t *testing.T) {
	store := newTestStore(t)

	scraped := []models.Listing{
		{ID: "dup1", Price: f64(1000)},
		{ID: "dup1", Price: f64(2000)},
	}

	result := Diff(scraped, store)
	if len(result.New) != 1 {
		t.Fatalf("New has %d entries; want 1", len(result.New))
	}
	if *result.New[0].Price != 1000 {
		t.Errorf("kept Price = %.0f; want the first occurrence (1000)", *result.New[0].Price)
	}
}

func TestDiffEmptyScrape(t *testing.T) {
	store := newTestStore(t)
	store.UpsertNew(models.Listing{ID: "known1"}, time.Now())

	result := Diff(nil, store)
	if len(result.New) != 0 || len(result.Known) != 0 {
		t.Errorf("Diff(nil) = %+v; want empty partitions", result)
	}
}
