package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"pararius-alerts/models"
)

// PostgresArchive keeps a long-term copy of every listing the run discovers.
// The JSON store stays the source of truth; the archive only ever gains rows,
// so re-archiving an id is a no-op.
type PostgresArchive struct {
	db *sql.DB
}

// NewPostgresArchive opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use archive.
func NewPostgresArchive(dsn string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("archive: ping failed after retries: %w", err)
	}

	a := &PostgresArchive{db: db}
	if err := a.migrate(); err != nil {
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}

	return a, nil
}

func (a *PostgresArchive) migrate() error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id            TEXT PRIMARY KEY,
			url           TEXT NOT NULL,
			title         TEXT NOT NULL,
			price         NUMERIC(10,2),
			size_m2       INTEGER,
			rooms         INTEGER,
			location      TEXT NOT NULL DEFAULT '',
			interior      TEXT NOT NULL DEFAULT '',
			property_type TEXT NOT NULL DEFAULT '',
			image_url     TEXT NOT NULL DEFAULT '',
			agency        TEXT NOT NULL DEFAULT '',
			city          TEXT NOT NULL DEFAULT '',
			first_seen    TIMESTAMPTZ NOT NULL,
			archived_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_city       ON listings(city);
		CREATE INDEX IF NOT EXISTS idx_listings_first_seen ON listings(first_seen);
	`)
	return err
}

// Archive batch-inserts listings, skipping ids already archived.
func (a *PostgresArchive) Archive(listings []models.StoredListing) error {
	if len(listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := a.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (a *PostgresArchive) insertBatch(batch []models.StoredListing) error {
	const cols = 13
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, l := range batch {
		placeholders := make([]string, cols)
		for c := 0; c < cols; c++ {
			placeholders[c] = fmt.Sprintf("$%d", idx*cols+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.ID, l.URL, l.Title, l.Price, l.Size, l.Rooms,
			l.Location, l.Interior, l.PropertyType, l.ImageURL, l.Agency, l.City,
			l.FirstSeen)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (id, url, title, price, size_m2, rooms,
			location, interior, property_type, image_url, agency, city, first_seen)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := a.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("archive: insert batch: %w", err)
	}
	return nil
}

func (a *PostgresArchive) Close() error {
	return a.db.Close()
}
