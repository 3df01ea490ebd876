package reviews

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/calemaley/airbnb/internal/domain/booking"
	"github.com/calemaley/airbnb/internal/domain/listings"
	"github.com/calemaley/airbnb/internal/domain/shared/events"
)

var (
	ErrInvalidRating   = errors.New("reviews: rating must be between 1 and 5 in half steps")
	ErrAuthorRequired  = errors.New("reviews: author id required")
	ErrAlreadyReviewed = errors.New("reviews: guest already reviewed this listing")
	ErrNotFound        = errors.New("reviews: not found")
)

type ReviewID string

// Review is guest feedback tied to a completed stay. Reviews are immutable
// once submitted; there is no update or delete path.
type Review struct {
	ID         ReviewID
	ListingID  listings.ListingID
	BookingID  booking.BookingID
	AuthorID   string
	AuthorName string
	Rating     float64
	Comment    string
	CreatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	ByListingAndAuthor(ctx context.Context, listingID listings.ListingID, authorID string) (*Review, error)
	ListByListing(ctx context.Context, listingID listings.ListingID, limit, offset int) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

// ValidRating accepts whole and half-star values from 1 to 5.
func ValidRating(rating float64) bool {
	if rating < 1 || rating > 5 {
		return false
	}
	doubled := rating * 2
	return doubled == math.Trunc(doubled)
}

type SubmitParams struct {
	ID         ReviewID
	ListingID  listings.ListingID
	BookingID  booking.BookingID
	AuthorID   string
	AuthorName string
	Rating     float64
	Comment    string
	CreatedAt  time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if !ValidRating(params.Rating) {
		return nil, ErrInvalidRating
	}
	if params.AuthorID == "" {
		return nil, ErrAuthorRequired
	}
	review := &Review{
		ID:         params.ID,
		ListingID:  params.ListingID,
		BookingID:  params.BookingID,
		AuthorID:   params.AuthorID,
		AuthorName: strings.TrimSpace(params.AuthorName),
		Rating:     params.Rating,
		Comment:    strings.TrimSpace(params.Comment),
		CreatedAt:  params.CreatedAt.UTC(),
	}
	review.Record(ReviewSubmitted{
		ReviewID:  review.ID,
		ListingID: review.ListingID,
		BookingID: review.BookingID,
		Rating:    review.Rating,
		At:        review.CreatedAt,
	})
	return review, nil
}

// MeanRating computes the arithmetic mean of the given reviews, 0 when empty.
// The listing aggregate must always equal this derivation.
func MeanRating(rs []*Review) float64 {
	if len(rs) == 0 {
		return 0
	}
	var total float64
	for _, r := range rs {
		total += r.Rating
	}
	return total / float64(len(rs))
}
