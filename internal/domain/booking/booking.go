package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/calemaley/airbnb/internal/domain/listings"
	"github.com/calemaley/airbnb/internal/domain/pricing"
	"github.com/calemaley/airbnb/internal/domain/shared/daterange"
	"github.com/calemaley/airbnb/internal/domain/shared/events"
)

var (
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrOwnListing      = errors.New("booking: hosts cannot book their own listing")
	ErrGuestRequired   = errors.New("booking: guest identity or contact details required")
	ErrBookingNotFound = errors.New("booking: not found")
)

type BookingID string

type BookingState string

// Bookings exist only once confirmed; there is no pending or cancelled state.
const StateConfirmed BookingState = "CONFIRMED"

// GuestContact carries denormalized contact details for unauthenticated
// guest checkout.
type GuestContact struct {
	Name  string
	Email string
	Phone string
}

func (g GuestContact) Empty() bool {
	return strings.TrimSpace(g.Name) == "" && strings.TrimSpace(g.Email) == ""
}

type Booking struct {
	ID         BookingID
	ListingID  listings.ListingID
	GuestID    string
	HostID     listings.HostID
	Range      daterange.DateRange
	Guests     int
	Price      pricing.Quote
	State      BookingState
	PaymentRef string
	Contact    GuestContact
	CreatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	Listing    *listings.Listing
	GuestID    string
	Range      daterange.DateRange
	Guests     int
	Price      pricing.Quote
	PaymentRef string
	Contact    GuestContact
	CreatedAt  time.Time
}

// NewBooking builds a confirmed booking, enforcing the submission invariants:
// positive night count, at least one guest, an identified guest (account or
// contact details), and that the guest does not own the listing.
func NewBooking(params CreateParams) (*Booking, error) {
	if params.Listing == nil {
		return nil, listings.ErrNotFound
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" && params.Contact.Empty() {
		return nil, ErrGuestRequired
	}
	if params.Listing.OwnedBy(params.GuestID) {
		return nil, ErrOwnListing
	}
	if err := params.Price.RecalculateTotal(); err != nil {
		return nil, err
	}

	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		ListingID:  params.Listing.ID,
		GuestID:    params.GuestID,
		HostID:     params.Listing.Host,
		Range:      params.Range,
		Guests:     params.Guests,
		Price:      params.Price,
		State:      StateConfirmed,
		PaymentRef: params.PaymentRef,
		Contact:    params.Contact,
		CreatedAt:  now,
	}
	b.Record(BookingConfirmed{
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		GuestID:    b.GuestID,
		HostID:     b.HostID,
		Range:      b.Range,
		Total:      b.Price.Total,
		PaymentRef: b.PaymentRef,
		At:         now,
	})
	return b, nil
}

// Completed reports whether the stay has ended by the given time; only
// completed stays are reviewable.
func (b *Booking) Completed(now time.Time) bool {
	return !b.Range.CheckOut.After(daterange.Day(now))
}
