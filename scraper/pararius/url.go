package pararius

import (
	"fmt"
	"strings"

	"pararius-alerts/config"
)

// BuildSearchURL assembles the search URL for a city, encoding the numeric
// constraints as path segments the way the site's own filter form does:
// /apartments/{city}/{min}-{max}/{n}-bedrooms/{m}-m2/page-{p}. Omitted
// constraints simply drop their segment; a half-open price range becomes
// "{min}+" or "0-{max}".
func BuildSearchURL(cfg *config.Config, city string, page int) string {
	return buildSearchURL(baseURL, cfg, city, page)
}

func buildSearchURL(base string, cfg *config.Config, city string, page int) string {
	segments := []string{base + searchPath, city}

	minPrice, maxPrice := cfg.PriceRange.Min, cfg.PriceRange.Max
	switch {
	case minPrice != nil && maxPrice != nil:
		segments = append(segments, fmt.Sprintf("%.0f-%.0f", *minPrice, *maxPrice))
	case minPrice != nil:
		segments = append(segments, fmt.Sprintf("%.0f+", *minPrice))
	case maxPrice != nil:
		segments = append(segments, fmt.Sprintf("0-%.0f", *maxPrice))
	}

	if cfg.MinBedrooms > 0 {
		segments = append(segments, fmt.Sprintf("%d-bedrooms", cfg.MinBedrooms))
	}
	if cfg.MinSize > 0 {
		segments = append(segments, fmt.Sprintf("%d-m2", cfg.MinSize))
	}
	if page > 1 {
		segments = append(segments, fmt.Sprintf("page-%d", page))
	}

	return strings.Join(segments, "/")
}
