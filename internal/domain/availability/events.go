package availability

import (
	"time"

	"github.com/calemaley/airbnb/internal/domain/booking"
	"github.com/calemaley/airbnb/internal/domain/listings"
	"github.com/calemaley/airbnb/internal/domain/shared/daterange"
)

type CalendarBlocked struct {
	ListingID listings.ListingID  `json:"listing_id"`
	BookingID booking.BookingID   `json:"booking_id"`
	Range     daterange.DateRange `json:"range"`
	At        time.Time           `json:"at"`
}

func (e CalendarBlocked) EventName() string     { return "availability.blocked" }
func (e CalendarBlocked) AggregateID() string   { return string(e.ListingID) }
func (e CalendarBlocked) OccurredAt() time.Time { return e.At }

type OverbookingPrevented struct {
	ListingID listings.ListingID  `json:"listing_id"`
	Range     daterange.DateRange `json:"range"`
	At        time.Time           `json:"at"`
}

func (e OverbookingPrevented) EventName() string     { return "availability.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return string(e.ListingID) }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }
