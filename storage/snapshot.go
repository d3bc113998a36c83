package storage

import (
	"fmt"

	"pararius-alerts/models"
)

// WriteSnapshot replaces the latest-scrape snapshot file with this run's raw
// scrape results. The snapshot is a display aid, overwritten wholesale every
// run; an empty scrape writes an empty array, not null.
func WriteSnapshot(path string, listings []models.Listing) error {
	if listings == nil {
		listings = []models.Listing{}
	}
	if err := writeJSONAtomic(path, listings); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}
