package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"pararius-alerts/models"
	"pararius-alerts/utils"
)

var (
	// ErrDuplicateID is returned by UpsertNew when the id is already stored.
	ErrDuplicateID = errors.New("listing id already stored")
	// ErrNotFound is returned by MarkNotified for an unknown id.
	ErrNotFound = errors.New("listing not found")
)

// ListingStore is the persistent record of every listing ever seen (until
// pruned). It is keyed by listing id; FirstSeen is assigned at insert and
// never rewritten, which is what makes new-listing detection idempotent
// across runs. Not safe for concurrent use: one run owns the store.
type ListingStore struct {
	path     string
	logger   *utils.Logger
	listings map[string]models.StoredListing
}

// NewListingStore loads the store file at path. A missing file is a normal
// first run and yields an empty store; a file that exists but cannot be
// parsed is corruption and fails the load, so a run can never silently
// re-notify the whole site.
func NewListingStore(path string, logger *utils.Logger) (*ListingStore, error) {
	s := &ListingStore{
		path:     path,
		logger:   logger,
		listings: make(map[string]models.StoredListing),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("[store] No store file at %s — starting empty", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %q: %w", path, err)
	}

	var records []models.StoredListing
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("store: corrupt store file %q: %w", path, err)
	}
	for _, r := range records {
		s.listings[r.ID] = r
	}

	logger.Info("[store] Loaded %d listings from %s", len(s.listings), path)
	return s, nil
}

// Lookup returns the stored listing for id, if present.
func (s *ListingStore) Lookup(id string) (models.StoredListing, bool) {
	r, ok := s.listings[id]
	return r, ok
}

// Len returns the number of stored listings.
func (s *ListingStore) Len() int {
	return len(s.listings)
}

// UpsertNew inserts a listing first seen at now. If the id is already stored
// the existing record is returned unchanged alongside ErrDuplicateID: stored
// content and FirstSeen never move for a known id.
func (s *ListingStore) UpsertNew(l models.Listing, now time.Time) (models.StoredListing, error) {
	if existing, ok := s.listings[l.ID]; ok {
		return existing, fmt.Errorf("store: id %q: %w", l.ID, ErrDuplicateID)
	}

	record := models.StoredListing{
		Listing:   l,
		FirstSeen: now,
		Notified:  false,
	}
	s.listings[l.ID] = record
	return record, nil
}

// MarkNotified flips the notified flag for id. Marking an already-notified
// listing is a no-op; an unknown id is an ErrNotFound.
func (s *ListingStore) MarkNotified(id string) error {
	r, ok := s.listings[id]
	if !ok {
		return fmt.Errorf("store: id %q: %w", id, ErrNotFound)
	}
	if r.Notified {
		return nil
	}
	r.Notified = true
	s.listings[id] = r
	return nil
}

// Prune removes every listing strictly older than maxAge and returns the
// removed ids, sorted. A listing exactly maxAge old is retained.
func (s *ListingStore) Prune(now time.Time, maxAge time.Duration) []string {
	var removed []string
	for id, r := range s.listings {
		if now.Sub(r.FirstSeen) > maxAge {
			delete(s.listings, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)

	if len(removed) > 0 {
		s.logger.Info("[store] Pruned %d listings older than %v", len(removed), maxAge)
	}
	return removed
}

// All returns copies of every stored listing, newest first (FirstSeen
// descending, id ascending for records sharing a timestamp). This is also
// the order the store file is written in.
func (s *ListingStore) All() []models.StoredListing {
	records := make([]models.StoredListing, 0, len(s.listings))
	for _, r := range s.listings {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].FirstSeen.Equal(records[j].FirstSeen) {
			return records[i].FirstSeen.After(records[j].FirstSeen)
		}
		return records[i].ID < records[j].ID
	})
	return records
}

// Save writes the whole store to its file atomically.
func (s *ListingStore) Save() error {
	if err := writeJSONAtomic(s.path, s.All()); err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	return nil
}
