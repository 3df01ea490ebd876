package reviews

import (
	"time"

	"github.com/calemaley/airbnb/internal/domain/booking"
	"github.com/calemaley/airbnb/internal/domain/listings"
)

type ReviewSubmitted struct {
	ReviewID  ReviewID           `json:"review_id"`
	ListingID listings.ListingID `json:"listing_id"`
	BookingID booking.BookingID  `json:"booking_id"`
	Rating    float64            `json:"rating"`
	At        time.Time          `json:"at"`
}

func (e ReviewSubmitted) EventName() string     { return "reviews.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
