package policies

import (
	"context"

	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainpricing "github.com/calemaley/airbnb/internal/domain/pricing"
	domainrange "github.com/calemaley/airbnb/internal/domain/shared/daterange"
)

type PricingPort interface {
	Quote(ctx context.Context, listing *domainlistings.Listing, dr domainrange.DateRange, guests int) (domainpricing.Quote, error)
}
