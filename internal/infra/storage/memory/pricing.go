package memory

import (
	"context"

	"github.com/calemaley/airbnb/internal/app/policies"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainpricing "github.com/calemaley/airbnb/internal/domain/pricing"
	domainrange "github.com/calemaley/airbnb/internal/domain/shared/daterange"
)

// PricingPortAdapter exposes a domain calculator through the booking policy port.
type PricingPortAdapter struct {
	Calculator domainpricing.Calculator
}

func (a PricingPortAdapter) Quote(ctx context.Context, listing *domainlistings.Listing, dr domainrange.DateRange, guests int) (domainpricing.Quote, error) {
	calc := a.Calculator
	if calc == nil {
		calc = domainpricing.NightlyRateCalculator{}
	}
	input := domainpricing.QuoteInput{
		Listing: listing,
		Range:   dr,
		Guests:  guests,
	}
	if listing != nil {
		input.ListingID = listing.ID
	}
	return calc.Quote(ctx, input)
}

var _ policies.PricingPort = PricingPortAdapter{}
