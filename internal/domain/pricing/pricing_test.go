package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calemaley/airbnb/internal/domain/listings"
	"github.com/calemaley/airbnb/internal/domain/shared/daterange"
	"github.com/calemaley/airbnb/internal/domain/shared/money"
)

func TestQuoteTotalIsNightlyTimesNights(t *testing.T) {
	dr, err := daterange.New(
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("daterange.New() unexpected error: %v", err)
	}
	listing := &listings.Listing{ID: "lst-1", NightlyRate: 5000}

	quote, err := NightlyRateCalculator{}.Quote(context.Background(), QuoteInput{Listing: listing, Range: dr})
	if err != nil {
		t.Fatalf("Quote() unexpected error: %v", err)
	}
	if quote.Nights != 3 {
		t.Fatalf("Nights = %d, want 3", quote.Nights)
	}
	if quote.Total.Amount != 15000 {
		t.Fatalf("Total = %d, want 15000", quote.Total.Amount)
	}
	if quote.Total.Currency != money.DefaultCurrency {
		t.Fatalf("Currency = %s, want %s", quote.Total.Currency, money.DefaultCurrency)
	}
}

func TestRecalculateTotalRejectsNonPositiveNights(t *testing.T) {
	quote := Quote{Nights: 0, Nightly: money.KES(5000)}
	if err := quote.RecalculateTotal(); !errors.Is(err, ErrNonPositiveNights) {
		t.Fatalf("RecalculateTotal() error = %v, want ErrNonPositiveNights", err)
	}
	if quote.Total.Amount != 0 {
		t.Fatalf("Total = %d, want 0 for rejected range", quote.Total.Amount)
	}

	quote = Quote{Nights: -2, Nightly: money.KES(5000)}
	if err := quote.RecalculateTotal(); !errors.Is(err, ErrNonPositiveNights) {
		t.Fatalf("RecalculateTotal() error = %v, want ErrNonPositiveNights", err)
	}
}

func TestRecalculateTotalRequiresCurrency(t *testing.T) {
	quote := Quote{Nights: 2, Nightly: money.Money{Amount: 100}}
	if err := quote.RecalculateTotal(); !errors.Is(err, ErrCurrencyUnset) {
		t.Fatalf("RecalculateTotal() error = %v, want ErrCurrencyUnset", err)
	}
}

func TestStoredBookingTotalReproduces(t *testing.T) {
	// Round trip: a persisted check-in/check-out/rate triple must recompute the
	// same total that was stored with the booking.
	dr, _ := daterange.New(
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
	)
	stored := Quote{Nights: dr.Nights(), Nightly: money.KES(7200)}
	if err := stored.RecalculateTotal(); err != nil {
		t.Fatalf("RecalculateTotal() unexpected error: %v", err)
	}
	reloaded := Quote{Nights: dr.Nights(), Nightly: money.KES(7200)}
	if err := reloaded.RecalculateTotal(); err != nil {
		t.Fatalf("RecalculateTotal() unexpected error: %v", err)
	}
	if reloaded.Total != stored.Total {
		t.Fatalf("recomputed total = %v, want %v", reloaded.Total, stored.Total)
	}
}
