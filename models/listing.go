package models

import "time"

// Listing is one scraped apartment advertisement. Price, Size and Rooms are
// pointers so that "the site did not show this" is distinguishable from zero;
// a nil field means the value was absent or unparseable.
type Listing struct {
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Price        *float64 `json:"price"`
	Size         *int     `json:"size"`
	Rooms        *int     `json:"rooms"`
	Location     string   `json:"location,omitempty"`
	Interior     string   `json:"interior,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Agency       string   `json:"agency,omitempty"`
	City         string   `json:"city,omitempty"`
}

// StoredListing is a Listing as it lives in the persisted store. FirstSeen is
// set once, at the run that first observed the id, and never changes.
// Notified flips to true only after a confirmed notification dispatch.
type StoredListing struct {
	Listing
	FirstSeen time.Time `json:"first_seen"`
	Notified  bool      `json:"notified"`
}

// ListingDetails holds the extra fields available only on a listing's own
// page. Used to enrich notifications; everything here is best-effort.
type ListingDetails struct {
	Description     string            `json:"description,omitempty"`
	Available       string            `json:"available,omitempty"`
	Characteristics map[string]string `json:"characteristics,omitempty"`
	Images          []string          `json:"images,omitempty"`
}
