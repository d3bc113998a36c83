package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"pararius-alerts/models"
)

// maxRunStatsEntries bounds the run-statistics log. Older entries fall off
// the front; the log never grows past the last 100 runs.
const maxRunStatsEntries = 100

// AppendRunStats appends one run's statistics to the log at path, trimming
// to the newest maxRunStatsEntries, and writes the result atomically. A
// missing log starts fresh; an unparseable one is reset rather than blocking
// the run record.
func AppendRunStats(path string, stats *models.RunStats) error {
	var history []models.RunStats

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// first run
	case err != nil:
		return fmt.Errorf("stats: read %q: %w", path, err)
	default:
		if err := json.Unmarshal(raw, &history); err != nil {
			history = nil
		}
	}

	history = append(history, *stats)
	if len(history) > maxRunStatsEntries {
		history = history[len(history)-maxRunStatsEntries:]
	}

	if err := writeJSONAtomic(path, history); err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	return nil
}
