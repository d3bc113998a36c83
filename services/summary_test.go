package services

import (
	"testing"
	"time"

	"pararius-alerts/models"
	"pararius-alerts/utils"
)

func sampleStore() []models.StoredListing {
	seen := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	stored := func(id, city string, price *float64, notified bool) models.StoredListing {
		return models.StoredListing{
			Listing: models.Listing{
				ID:    id,
				URL:   "https://www.pararius.com/apartment-for-rent/" + city + "/" + id,
				Title: "Apartment " + id,
				Price: price,
				City:  city,
			},
			FirstSeen: seen,
			Notified:  notified,
		}
	}
	return []models.StoredListing{
		stored("a1", "rotterdam", f64(1400), true),
		stored("b2", "rotterdam", f64(950), true),
		stored("c3", "den-haag", f64(1800), false),
		stored("d4", "den-haag", nil, true),
		stored("e5", "utrecht", f64(1250), true),
	}
}

func TestSummaryCounts(t *testing.T) {
	svc := NewSummaryService(utils.NewLogger(false))
	r := svc.Generate(sampleStore())
	if r.TotalStored != 5 {
		t.Errorf("TotalStored: got %d, want 5", r.TotalStored)
	}
	if r.AwaitingNotify != 1 {
		t.Errorf("AwaitingNotify: got %d, want 1", r.AwaitingNotify)
	}
}

func TestSummaryRents(t *testing.T) {
	svc := NewSummaryService(utils.NewLogger(false))
	r := svc.Generate(sampleStore())
	if want := 1350.0; r.AverageRent != want {
		t.Errorf("AverageRent: got %.2f, want %.2f (unpriced listings excluded)", r.AverageRent, want)
	}
	if r.MinRent != 950 {
		t.Errorf("MinRent: got %.2f, want 950", r.MinRent)
	}
	if r.MaxRent != 1800 {
		t.Errorf("MaxRent: got %.2f, want 1800", r.MaxRent)
	}
}

func TestSummaryCheapest(t *testing.T) {
	svc := NewSummaryService(utils.NewLogger(false))
	r := svc.Generate(sampleStore())
	if r.Cheapest == nil {
		t.Fatal("Cheapest should not be nil")
	}
	if r.Cheapest.ID != "b2" {
		t.Errorf("Cheapest: got %q, want %q", r.Cheapest.ID, "b2")
	}
}

func TestSummaryCityGrouping(t *testing.T) {
	svc := NewSummaryService(utils.NewLogger(false))
	r := svc.Generate(sampleStore())
	if r.ListingsByCity["rotterdam"] != 2 {
		t.Errorf("rotterdam count: got %d, want 2", r.ListingsByCity["rotterdam"])
	}
	if r.ListingsByCity["den-haag"] != 2 {
		t.Errorf("den-haag count: got %d, want 2", r.ListingsByCity["den-haag"])
	}
	if r.ListingsByCity["utrecht"] != 1 {
		t.Errorf("utrecht count: got %d, want 1", r.ListingsByCity["utrecht"])
	}
}

func TestSummaryEmptyStore(t *testing.T) {
	svc := NewSummaryService(utils.NewLogger(false))
	r := svc.Generate(nil)
	if r.TotalStored != 0 || r.Cheapest != nil {
		t.Errorf("empty store summary = %+v; want zero values", r)
	}
}
