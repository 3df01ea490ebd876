package listings

import (
	"context"

	"github.com/calemaley/airbnb/internal/app/dto"
	"github.com/calemaley/airbnb/internal/app/handlers/support"
	"github.com/calemaley/airbnb/internal/app/queries"
	"github.com/calemaley/airbnb/internal/app/uow"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
)

const getOverviewKey = "listings.overview"

// GetOverviewQuery loads one listing with its disabled calendar dates.
type GetOverviewQuery struct {
	ListingID string
}

func (q GetOverviewQuery) Key() string { return getOverviewKey }

// GetOverviewHandler resolves the overview DTO.
type GetOverviewHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetOverviewHandler) Handle(ctx context.Context, q GetOverviewQuery) (dto.ListingOverview, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingOverview{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.ListingOverview{}, err
	}

	calendar, err := unit.Availability().Calendar(ctx, listing.ID)
	if err != nil {
		return dto.ListingOverview{}, err
	}

	return dto.MapListingOverview(listing, calendar), nil
}

var _ queries.Handler[GetOverviewQuery, dto.ListingOverview] = (*GetOverviewHandler)(nil)
