package pararius

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pararius-alerts/models"
)

// FetchDetails retrieves a listing's own page for the extra fields shown
// only there (description, feature table, availability, full image set).
// Best effort: callers fall back to the search-card fields on error.
func (s *Scraper) FetchDetails(url string) (*models.ListingDetails, error) {
	doc, err := s.fetchDocument(url)
	if err != nil {
		return nil, fmt.Errorf("details %s: %w", url, err)
	}
	return parseDetails(doc), nil
}

func parseDetails(doc *goquery.Document) *models.ListingDetails {
	d := &models.ListingDetails{
		Description: normaliseText(doc.Find(".listing-detail-description__additional").First().Text()),
		Available:   normaliseText(doc.Find(".listing-detail-summary__item--available").First().Text()),
	}

	doc.Find(".listing-features__list .listing-features__feature").Each(func(_ int, f *goquery.Selection) {
		label := normaliseText(f.Find(".listing-features__label").First().Text())
		value := normaliseText(f.Find(".listing-features__value").First().Text())
		if label == "" || value == "" {
			return
		}
		if d.Characteristics == nil {
			d.Characteristics = make(map[string]string)
		}
		d.Characteristics[strings.TrimSuffix(label, ":")] = value
	})

	doc.Find(".listing-detail-media__images img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			d.Images = append(d.Images, src)
		}
	})

	return d
}
