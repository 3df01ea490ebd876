package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/calemaley/airbnb/internal/app/dto"
	handlersupport "github.com/calemaley/airbnb/internal/app/handlers/support"
	"github.com/calemaley/airbnb/internal/app/queries"
	"github.com/calemaley/airbnb/internal/app/uow"
	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainuser "github.com/calemaley/airbnb/internal/domain/user"
)

const listHostBookingsKey = "host.bookings.list"

var ErrHostRequired = errors.New("booking: host id is required")

// ListHostBookingsQuery returns every confirmed stay across the host's
// listings, newest first.
type ListHostBookingsQuery struct {
	HostID string
}

func (q ListHostBookingsQuery) Key() string { return listHostBookingsKey }

type ListHostBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) (dto.HostBookingCollection, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.HostBookingCollection{}, ErrHostRequired
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostBookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listings, err := unit.Listings().Search(execCtx, domainlistings.SearchParams{
		Host: domainlistings.HostID(hostID),
	}.Normalized())
	if err != nil {
		return dto.HostBookingCollection{}, err
	}

	items := make([]dto.HostBookingSummary, 0)
	for _, listing := range listings.Items {
		bookings, err := unit.Booking().ListByListing(execCtx, listing.ID)
		if err != nil {
			return dto.HostBookingCollection{}, err
		}
		for _, booking := range bookings {
			items = append(items, dto.MapHostBookingSummary(booking, listing, h.guestName(execCtx, unit, booking)))
		}
	}

	if h.Logger != nil {
		h.Logger.Debug("host bookings listed", "host_id", hostID, "count", len(items))
	}

	return dto.HostBookingCollection{Items: items}, nil
}

func (h *ListHostBookingsHandler) guestName(ctx context.Context, unit uow.UnitOfWork, booking *domainbooking.Booking) string {
	if !booking.Contact.Empty() {
		return booking.Contact.Name
	}
	if booking.GuestID == "" {
		return ""
	}
	guest, err := unit.Users().ByID(ctx, domainuser.ID(booking.GuestID))
	if err != nil {
		return ""
	}
	return guest.Name
}

var _ queries.Handler[ListHostBookingsQuery, dto.HostBookingCollection] = (*ListHostBookingsHandler)(nil)
