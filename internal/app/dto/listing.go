package dto

import (
	"time"

	domainavailability "github.com/calemaley/airbnb/internal/domain/availability"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
)

// ListingHost contains owner level metadata exposed publicly.
type ListingHost struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// ListingCard is the catalog tile shape.
type ListingCard struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Category    string   `json:"category"`
	NightlyRate int64    `json:"nightly_rate"`
	Currency    string   `json:"currency"`
	PriceType   string   `json:"price_type"`
	Images      []string `json:"images"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
}

type ListingCatalog struct {
	Items  []ListingCard `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// MapCatalog builds one page of catalog cards.
func MapCatalog(result domainlistings.SearchResult, params domainlistings.SearchParams) ListingCatalog {
	items := make([]ListingCard, 0, len(result.Items))
	for _, listing := range result.Items {
		items = append(items, MapListingCard(listing))
	}
	return ListingCatalog{
		Items:  items,
		Total:  result.Total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}
}

// ListingOverview aggregates listing details and disabled calendar dates.
type ListingOverview struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Location      string      `json:"location"`
	Category      string      `json:"category"`
	Description   string      `json:"description"`
	Amenities     []string    `json:"amenities"`
	Images        []string    `json:"images"`
	NightlyRate   int64       `json:"nightly_rate"`
	Currency      string      `json:"currency"`
	PriceType     string      `json:"price_type"`
	Rating        float64     `json:"rating"`
	ReviewCount   int         `json:"review_count"`
	Host          ListingHost `json:"host"`
	State         string      `json:"state"`
	Lat           float64     `json:"lat,omitempty"`
	Lng           float64     `json:"lng,omitempty"`
	DisabledDates []string    `json:"disabled_dates"`
}

func MapListingCard(listing *domainlistings.Listing) ListingCard {
	if listing == nil {
		return ListingCard{}
	}
	return ListingCard{
		ID:          string(listing.ID),
		Name:        listing.Name,
		Location:    listing.Location,
		Category:    string(listing.Category),
		NightlyRate: listing.NightlyRate,
		Currency:    "KES",
		PriceType:   string(listing.PriceType),
		Images:      append([]string(nil), listing.Images...),
		Rating:      listing.Rating,
		ReviewCount: listing.ReviewCount,
	}
}

// MapListingOverview builds the detail payload the frontend renders. Disabled
// dates come from the availability calendar so the date picker cannot offer
// occupied days.
func MapListingOverview(listing *domainlistings.Listing, calendar *domainavailability.Calendar) ListingOverview {
	if listing == nil {
		return ListingOverview{}
	}
	overview := ListingOverview{
		ID:          string(listing.ID),
		Name:        listing.Name,
		Location:    listing.Location,
		Category:    string(listing.Category),
		Description: listing.Description,
		Amenities:   append([]string(nil), listing.Amenities...),
		Images:      append([]string(nil), listing.Images...),
		NightlyRate: listing.NightlyRate,
		Currency:    "KES",
		PriceType:   string(listing.PriceType),
		Rating:      listing.Rating,
		ReviewCount: listing.ReviewCount,
		Host: ListingHost{
			ID:    string(listing.Host),
			Name:  listing.HostName,
			Phone: listing.HostPhone,
		},
		State:         string(listing.State),
		Lat:           listing.Lat,
		Lng:           listing.Lng,
		DisabledDates: FormatDisabledDates(calendar),
	}
	return overview
}

// FormatDisabledDates flattens calendar blocks into sorted ISO dates.
func FormatDisabledDates(calendar *domainavailability.Calendar) []string {
	if calendar == nil {
		return []string{}
	}
	days := calendar.DisabledDates()
	out := make([]string, 0, len(days))
	for _, day := range days {
		out = append(out, day.Format(time.DateOnly))
	}
	return out
}
