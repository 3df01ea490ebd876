package dto

import (
	"time"

	domainreviews "github.com/calemaley/airbnb/internal/domain/reviews"
)

// Review represents a public review payload.
type Review struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"booking_id,omitempty"`
	ListingID  string    `json:"listing_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Rating     float64   `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewCollection struct {
	Items       []Review `json:"items"`
	Total       int      `json:"total"`
	MeanRating  float64  `json:"mean_rating"`
	ReviewCount int      `json:"review_count"`
}

// MapReview builds a DTO from a domain review.
func MapReview(review *domainreviews.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:         string(review.ID),
		BookingID:  string(review.BookingID),
		ListingID:  string(review.ListingID),
		AuthorID:   review.AuthorID,
		AuthorName: review.AuthorName,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	}
}
