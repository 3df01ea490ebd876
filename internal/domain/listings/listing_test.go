package listings

import (
	"errors"
	"testing"
	"time"
)

func validParams() CreateListingParams {
	return CreateListingParams{
		ID:          "lst-1",
		Host:        "host-1",
		HostName:    "Wanjiru",
		Name:        "Meru Garden Cottage",
		Location:    "Meru Town, Meru",
		Category:    CategoryMidRange,
		NightlyRate: 5000,
		PriceType:   PriceFixed,
		Description: "Quiet cottage near the town centre.",
		Images:      []string{"https://img.example/1.jpg"},
		Amenities:   []string{"wifi", "parking"},
		Now:         time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewListingValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateListingParams)
		wantErr error
	}{
		{"missing name", func(p *CreateListingParams) { p.Name = " " }, ErrNameRequired},
		{"missing location", func(p *CreateListingParams) { p.Location = "" }, ErrLocationRequired},
		{"bad category", func(p *CreateListingParams) { p.Category = "Platinum" }, ErrInvalidCategory},
		{"bad price type", func(p *CreateListingParams) { p.PriceType = "Auction" }, ErrInvalidPriceType},
		{"zero rate", func(p *CreateListingParams) { p.NightlyRate = 0 }, ErrNightlyRate},
		{"negative rate", func(p *CreateListingParams) { p.NightlyRate = -100 }, ErrNightlyRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)
			if _, err := NewListing(params); !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewListing() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewListingStartsUnratedDraft(t *testing.T) {
	listing, err := NewListing(validParams())
	if err != nil {
		t.Fatalf("NewListing() unexpected error: %v", err)
	}
	if listing.State != ListingDraft {
		t.Fatalf("State = %s, want DRAFT", listing.State)
	}
	if listing.Rating != 0 {
		t.Fatalf("Rating = %v, want 0 for reviewless listing", listing.Rating)
	}
	if got := listing.PendingEvents(); len(got) != 1 || got[0].EventName() != "listings.created" {
		t.Fatalf("PendingEvents() = %v, want single listings.created", got)
	}
}

func TestActivateAndSuspend(t *testing.T) {
	listing, err := NewListing(validParams())
	if err != nil {
		t.Fatalf("NewListing() unexpected error: %v", err)
	}
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if err := listing.Activate(now); err != nil {
		t.Fatalf("Activate() unexpected error: %v", err)
	}
	if listing.State != ListingActive {
		t.Fatalf("State = %s, want ACTIVE", listing.State)
	}
	if err := listing.Suspend(now, "policy"); err != nil {
		t.Fatalf("Suspend() unexpected error: %v", err)
	}
	if err := listing.Suspend(now, "policy"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second Suspend() error = %v, want ErrInvalidState", err)
	}
}

func TestUpdateRating(t *testing.T) {
	listing, err := NewListing(validParams())
	if err != nil {
		t.Fatalf("NewListing() unexpected error: %v", err)
	}
	now := time.Now()
	if err := listing.UpdateRating(4.0, 3, now); err != nil {
		t.Fatalf("UpdateRating() unexpected error: %v", err)
	}
	if listing.Rating != 4.0 || listing.ReviewCount != 3 {
		t.Fatalf("Rating = %v ReviewCount = %d, want 4.0 and 3", listing.Rating, listing.ReviewCount)
	}
	if err := listing.UpdateRating(5.5, 4, now); !errors.Is(err, ErrRatingRange) {
		t.Fatalf("UpdateRating(5.5) error = %v, want ErrRatingRange", err)
	}
}

func TestOwnedBy(t *testing.T) {
	listing, err := NewListing(validParams())
	if err != nil {
		t.Fatalf("NewListing() unexpected error: %v", err)
	}
	if !listing.OwnedBy("host-1") {
		t.Fatalf("OwnedBy(host) = false, want true")
	}
	if listing.OwnedBy("guest-9") {
		t.Fatalf("OwnedBy(other) = true, want false")
	}
	if listing.OwnedBy("") {
		t.Fatalf("OwnedBy(empty) = true, want false")
	}
}

func TestSearchParamsNormalized(t *testing.T) {
	params := SearchParams{
		LocationQuery: "  Meru ",
		Amenities:     []string{" WiFi", "wifi", ""},
		Categories:    []Category{"Luxury", "Platinum"},
		Limit:         500,
		Offset:        -2,
		MinRating:     9,
		Sort:          "bogus",
	}
	got := params.Normalized()
	if got.LocationQuery != "meru" {
		t.Fatalf("LocationQuery = %q, want %q", got.LocationQuery, "meru")
	}
	if len(got.Amenities) != 1 || got.Amenities[0] != "wifi" {
		t.Fatalf("Amenities = %v, want [wifi]", got.Amenities)
	}
	if len(got.Categories) != 1 || got.Categories[0] != CategoryLuxury {
		t.Fatalf("Categories = %v, want [Luxury]", got.Categories)
	}
	if got.Limit != maxSearchLimit {
		t.Fatalf("Limit = %d, want %d", got.Limit, maxSearchLimit)
	}
	if got.Offset != 0 {
		t.Fatalf("Offset = %d, want 0", got.Offset)
	}
	if got.MinRating != 5 {
		t.Fatalf("MinRating = %v, want 5", got.MinRating)
	}
	if got.Sort != SortByPriceAsc {
		t.Fatalf("Sort = %s, want %s", got.Sort, SortByPriceAsc)
	}
}
