package services

import (
	"fmt"
	"sort"
	"strings"

	"pararius-alerts/models"
	"pararius-alerts/utils"
)

// SummaryService computes and renders the end-of-run overview of the
// listing store.
type SummaryService struct {
	logger *utils.Logger
}

// NewSummaryService creates a SummaryService with the given logger.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate computes the store overview. Listings without a parsed rent are
// counted but excluded from the rent statistics.
func (s *SummaryService) Generate(records []models.StoredListing) *models.SummaryReport {
	report := &models.SummaryReport{
		ListingsByCity: make(map[string]int),
	}

	if len(records) == 0 {
		return report
	}

	report.TotalStored = len(records)

	var priced []models.StoredListing
	for _, r := range records {
		if !r.Notified {
			report.AwaitingNotify++
		}
		if r.Price != nil {
			priced = append(priced, r)
		}
		if r.City != "" {
			report.ListingsByCity[r.City]++
		}
	}

	if len(priced) > 0 {
		cheapest := priced[0]
		report.MinRent = *priced[0].Price
		report.MaxRent = *priced[0].Price
		var total float64
		for _, r := range priced {
			total += *r.Price
			if *r.Price < report.MinRent {
				report.MinRent = *r.Price
				cheapest = r
			}
			if *r.Price > report.MaxRent {
				report.MaxRent = *r.Price
			}
		}
		report.AverageRent = round2(total / float64(len(priced)))
		report.Cheapest = &cheapest.Listing
	}

	return report
}

// Print renders the overview panel to stdout.
func (s *SummaryService) Print(r *models.SummaryReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🏠 LISTING STORE OVERVIEW\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Store state
	fmt.Printf("\033[1;33m  Store\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Listings tracked      : \033[1m%d\033[0m\n", r.TotalStored)
	fmt.Printf("  Awaiting notification : \033[1m%d\033[0m\n", r.AwaitingNotify)
	fmt.Println()

	// Rent stats (only listings with a parsed rent)
	fmt.Printf("\033[1;33m  Rent Statistics (per month)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AverageRent > 0 {
		fmt.Printf("  Average rent : \033[1;32m€%.2f\033[0m\n", r.AverageRent)
		fmt.Printf("  Minimum rent : \033[1;32m€%.2f\033[0m\n", r.MinRent)
		fmt.Printf("  Maximum rent : \033[1;32m€%.2f\033[0m\n", r.MaxRent)
	} else {
		fmt.Printf("  No rent data available\n")
	}
	fmt.Println()

	// Cheapest
	if r.Cheapest != nil {
		fmt.Printf("\033[1;33m  Cheapest Listing\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.Cheapest.Title, 50))
		fmt.Printf("  Location : %s\n", r.Cheapest.Location)
		fmt.Printf("  Rent     : \033[1;32m€%.0f/month\033[0m\n", *r.Cheapest.Price)
		fmt.Printf("  Link     : %s\n", r.Cheapest.URL)
		fmt.Println()
	}

	// Listings by City
	fmt.Printf("\033[1;33m  Listings by City\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ListingsByCity) == 0 {
		fmt.Printf("  No city data\n")
	} else {
		type cityCount struct {
			city  string
			count int
		}
		var cities []cityCount
		for city, cnt := range r.ListingsByCity {
			cities = append(cities, cityCount{city, cnt})
		}
		sort.Slice(cities, func(i, j int) bool {
			return cities[i].count > cities[j].count
		})
		for _, cc := range cities {
			bar := strings.Repeat("█", min(cc.count, 40))
			fmt.Printf("  %-20s %s (%d)\n", truncate(cc.city, 18), bar, cc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
