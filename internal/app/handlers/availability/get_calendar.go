package availability

import (
	"context"

	"github.com/calemaley/airbnb/internal/app/dto"
	"github.com/calemaley/airbnb/internal/app/handlers/support"
	"github.com/calemaley/airbnb/internal/app/queries"
	"github.com/calemaley/airbnb/internal/app/uow"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
)

const getCalendarKey = "availability.calendar"

// GetCalendarQuery loads the booked blocks and disabled dates of one listing.
type GetCalendarQuery struct {
	ListingID string
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if _, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID)); err != nil {
		return dto.Calendar{}, err
	}

	calendar, err := unit.Availability().Calendar(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Calendar{}, err
	}

	return dto.MapCalendar(calendar), nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
