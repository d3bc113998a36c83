package services

import (
	"pararius-alerts/models"
	"pararius-alerts/storage"
)

// DiffResult partitions one run's filtered listings against the store.
type DiffResult struct {
	New   []models.Listing
	Known []models.Listing
}

// Diff splits scraped listings into new and known by id alone. Content
// drift on a known id (a price edit, a reworded title) does not make it
// new again. Scrape order is preserved; a duplicate id within the same
// batch keeps its first occurrence only.
func Diff(scraped []models.Listing, store *storage.ListingStore) DiffResult {
	var result DiffResult
	inBatch := make(map[string]bool)

	for _, l := range scraped {
		if inBatch[l.ID] {
			continue
		}
		inBatch[l.ID] = true

		if _, ok := store.Lookup(l.ID); ok {
			result.Known = append(result.Known, l)
		} else {
			result.New = append(result.New, l)
		}
	}

	return result
}
