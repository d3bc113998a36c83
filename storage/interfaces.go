package storage

import "pararius-alerts/models"

// Archiver is the interface any long-term archive backend must satisfy.
type Archiver interface {
	Archive(listings []models.StoredListing) error
	Close() error
}
