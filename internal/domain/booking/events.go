package booking

import (
	"time"

	"github.com/calemaley/airbnb/internal/domain/listings"
	"github.com/calemaley/airbnb/internal/domain/shared/daterange"
	"github.com/calemaley/airbnb/internal/domain/shared/money"
)

type BookingConfirmed struct {
	BookingID  BookingID           `json:"booking_id"`
	ListingID  listings.ListingID  `json:"listing_id"`
	GuestID    string              `json:"guest_id,omitempty"`
	HostID     listings.HostID     `json:"host_id"`
	Range      daterange.DateRange `json:"range"`
	Total      money.Money         `json:"total"`
	PaymentRef string              `json:"payment_ref,omitempty"`
	At         time.Time           `json:"at"`
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }
