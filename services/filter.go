package services

import (
	"strings"

	"pararius-alerts/config"
	"pararius-alerts/models"
)

// MatchesFilter reports whether a listing satisfies every configured
// constraint. Constraints are conjunctive. A field the parser could not
// extract never excludes the listing: a nil price, size or rooms and an
// empty interior or property type all pass their respective constraints,
// so partially parsed listings are kept rather than silently lost. This
// optimistic pass-through is deliberate policy.
func MatchesFilter(l models.Listing, cfg *config.Config) bool {
	if len(cfg.Cities) > 0 && l.City != "" && !containsExact(cfg.Cities, l.City) {
		return false
	}

	if l.Price != nil {
		if cfg.PriceRange.Min != nil && *l.Price < *cfg.PriceRange.Min {
			return false
		}
		if cfg.PriceRange.Max != nil && *l.Price > *cfg.PriceRange.Max {
			return false
		}
	}

	if cfg.MinSize > 0 && l.Size != nil && *l.Size < cfg.MinSize {
		return false
	}
	if cfg.MinBedrooms > 0 && l.Rooms != nil && *l.Rooms < cfg.MinBedrooms {
		return false
	}

	if len(cfg.PropertyTypes) > 0 && l.PropertyType != "" && !containsFold(cfg.PropertyTypes, l.PropertyType) {
		return false
	}
	if len(cfg.Interior) > 0 && l.Interior != "" && !containsFold(cfg.Interior, l.Interior) {
		return false
	}

	return true
}

// containsExact matches city names byte-for-byte: the configured cities are
// URL path segments, and the scraper tags records with those same segments.
func containsExact(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
