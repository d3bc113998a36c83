package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pararius-alerts/models"
)

func TestWriteSnapshotReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_listings.json")

	if err := WriteSnapshot(path, []models.Listing{listing("a1"), listing("b2")}); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if err := WriteSnapshot(path, []models.Listing{listing("c3")}); err != nil {
		t.Fatalf("second WriteSnapshot: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var snap []models.Listing
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("snapshot is not a JSON array: %v", err)
	}
	if len(snap) != 1 || snap[0].ID != "c3" {
		t.Errorf("snapshot = %v; want only the latest scrape", snap)
	}
}

func TestWriteSnapshotEmptyScrapeWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_listings.json")

	if err := WriteSnapshot(path, nil); err != nil {
		t.Fatalf("WriteSnapshot(nil): %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("empty snapshot = %q; want a JSON array, not null", raw)
	}
}
