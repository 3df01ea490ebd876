package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainrange "github.com/calemaley/airbnb/internal/domain/shared/daterange"
	"github.com/calemaley/airbnb/internal/infra/storage/memory"
)

func seedCalendar(t *testing.T, factory memory.Factory) {
	t.Helper()
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          "lst-1",
		Host:        "host-1",
		Name:        "Watamu Villa",
		Location:    "Watamu, Kilifi",
		Category:    domainlistings.CategoryLuxury,
		NightlyRate: 12000,
		PriceType:   domainlistings.PriceFixed,
		Now:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewListing() error = %v", err)
	}
	if err := factory.ListingsRepo.Save(context.Background(), listing); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	calendar, err := factory.AvailabilityRepo.Calendar(context.Background(), "lst-1")
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	dr, err := domainrange.New(
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("daterange.New() error = %v", err)
	}
	if err := calendar.Reserve(dr, domainbooking.BookingID("bk-1"), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if err := factory.AvailabilityRepo.Save(context.Background(), calendar); err != nil {
		t.Fatalf("Save calendar error = %v", err)
	}
}

func TestGetCalendarReturnsDisabledDates(t *testing.T) {
	factory := memory.NewFactory()
	seedCalendar(t, factory)
	handler := &GetCalendarHandler{UoWFactory: factory}

	res, err := handler.Handle(context.Background(), GetCalendarQuery{ListingID: "lst-1"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if res.ListingID != "lst-1" {
		t.Fatalf("ListingID = %q", res.ListingID)
	}
	if len(res.Blocks) != 1 {
		t.Fatalf("Blocks = %d, want 1", len(res.Blocks))
	}
	// both endpoints disabled: 10th through 13th inclusive
	want := []string{"2024-03-10", "2024-03-11", "2024-03-12", "2024-03-13"}
	if len(res.DisabledDates) != len(want) {
		t.Fatalf("DisabledDates = %v, want %v", res.DisabledDates, want)
	}
	for i, day := range want {
		if res.DisabledDates[i] != day {
			t.Fatalf("DisabledDates[%d] = %q, want %q", i, res.DisabledDates[i], day)
		}
	}
}

func TestGetCalendarUnknownListing(t *testing.T) {
	factory := memory.NewFactory()
	handler := &GetCalendarHandler{UoWFactory: factory}

	_, err := handler.Handle(context.Background(), GetCalendarQuery{ListingID: "missing"})
	if !errors.Is(err, domainlistings.ErrNotFound) {
		t.Fatalf("Handle() error = %v, want listings.ErrNotFound", err)
	}
}
