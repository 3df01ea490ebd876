package pricing

import (
	"context"
	"errors"

	"github.com/calemaley/airbnb/internal/domain/listings"
	"github.com/calemaley/airbnb/internal/domain/shared/daterange"
	"github.com/calemaley/airbnb/internal/domain/shared/money"
)

var (
	ErrCurrencyUnset     = errors.New("pricing: currency must be defined")
	ErrNonPositiveNights = errors.New("pricing: nights must be positive")
)

// Quote is the price derived for a stay: nightly rate times night count.
// No taxes, discounts or currency conversion apply.
type Quote struct {
	Nights  int
	Nightly money.Money
	Total   money.Money
}

func (q *Quote) Validate() error {
	if q.Nightly.Currency == "" {
		return ErrCurrencyUnset
	}
	if q.Nights <= 0 {
		return ErrNonPositiveNights
	}
	return nil
}

// RecalculateTotal rederives Total from Nightly and Nights. The stored total
// on a booking must always reproduce under this computation.
func (q *Quote) RecalculateTotal() error {
	if err := q.Validate(); err != nil {
		q.Total = money.Money{Amount: 0, Currency: q.Nightly.Currency}
		return err
	}
	q.Total = q.Nightly.Multiply(int64(q.Nights))
	return nil
}

type QuoteInput struct {
	ListingID listings.ListingID
	Listing   *listings.Listing
	Range     daterange.DateRange
	Guests    int
}

type Calculator interface {
	Quote(ctx context.Context, input QuoteInput) (Quote, error)
}

// NightlyRateCalculator quotes directly off the listing's advertised rate.
type NightlyRateCalculator struct{}

func (NightlyRateCalculator) Quote(_ context.Context, input QuoteInput) (Quote, error) {
	if input.Listing == nil {
		return Quote{}, errors.New("pricing: listing required")
	}
	quote := Quote{
		Nights:  input.Range.Nights(),
		Nightly: money.KES(input.Listing.NightlyRate),
	}
	if err := quote.RecalculateTotal(); err != nil {
		return Quote{}, err
	}
	return quote, nil
}

var _ Calculator = NightlyRateCalculator{}
