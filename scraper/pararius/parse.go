package pararius

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pararius-alerts/models"
)

var (
	priceRe = regexp.MustCompile(`€\s*([\d.,]+)`)
	sizeRe  = regexp.MustCompile(`(\d+)\s*m²`)
	roomsRe = regexp.MustCompile(`(\d+)\s*rooms?`)
)

// propertyKinds maps the leading word of a listing title to a canonical
// property type. Pararius titles start with the kind of property
// ("Apartment Beukelsdijk", "House Witte de Withstraat", ...).
var propertyKinds = map[string]string{
	"apartment": "apartment",
	"flat":      "apartment",
	"house":     "house",
	"studio":    "studio",
	"room":      "room",
}

// parseListings extracts every listing card from a search results page and
// returns the count of cards that had to be dropped. A card missing its
// identifying fields (link and title) is unusable and dropped; any other
// field that fails to parse is simply left absent on the record.
func parseListings(doc *goquery.Document, city string) ([]models.Listing, int) {
	var listings []models.Listing
	dropped := 0

	doc.Find(".search-list__item .listing-search-item").Each(func(_ int, card *goquery.Selection) {
		listing, ok := extractListing(card, city)
		if !ok {
			dropped++
			return
		}
		listings = append(listings, listing)
	})

	return listings, dropped
}

func extractListing(card *goquery.Selection, city string) (models.Listing, bool) {
	link := card.Find("a.listing-search-item__link--title").First()
	href, _ := link.Attr("href")
	title := normaliseText(link.Text())
	if href == "" || title == "" {
		return models.Listing{}, false
	}

	url := absoluteURL(href)
	l := models.Listing{
		ID:           path.Base(url),
		URL:          url,
		Title:        title,
		City:         city,
		PropertyType: propertyType(title),
		Price:        parsePrice(card.Find(".listing-search-item__price").First().Text()),
		Location:     normaliseText(card.Find(".listing-search-item__sub-title").First().Text()),
		Agency:       normaliseText(card.Find(".listing-search-item__info .listing-search-item__link").First().Text()),
	}

	card.Find(".illustrated-features__item").Each(func(_ int, item *goquery.Selection) {
		class, _ := item.Attr("class")
		text := item.Text()
		switch {
		case strings.Contains(class, "surface-area"):
			l.Size = matchInt(sizeRe, text)
		case strings.Contains(class, "number-of-rooms"):
			l.Rooms = matchInt(roomsRe, text)
		case strings.Contains(class, "interior"):
			l.Interior = normaliseText(text)
		}
	})

	if src, ok := card.Find("img.picture__image").First().Attr("src"); ok {
		l.ImageURL = src
	}

	return l, true
}

// parsePrice pulls the numeric rent out of a label like "€ 1,200 per month".
// The site uses separators for thousands only, so they are stripped before
// conversion. Returns nil when no price is shown ("Price on request").
func parsePrice(text string) *float64 {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	digits := strings.NewReplacer(",", "", ".", "").Replace(m[1])
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil
	}
	return &v
}

func matchInt(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}

func propertyType(title string) string {
	first, _, _ := strings.Cut(title, " ")
	return propertyKinds[strings.ToLower(first)]
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

// normaliseText trims and collapses the whitespace the site pads its markup
// with.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
