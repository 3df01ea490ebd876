package reviews

import (
	"context"
	"time"

	"github.com/calemaley/airbnb/internal/app/uow"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainreviews "github.com/calemaley/airbnb/internal/domain/reviews"
)

// recalculateListingRating recomputes the arithmetic mean over every review
// the listing has and stores it on the aggregate. Review and rating are
// persisted inside the same transaction so the pair cannot drift.
func recalculateListingRating(ctx context.Context, unit uow.UnitOfWork, listingID domainlistings.ListingID, now time.Time) error {
	all, err := unit.Reviews().ListByListing(ctx, listingID, 0, 0)
	if err != nil {
		return err
	}
	average := domainreviews.MeanRating(all)

	listing, err := unit.Listings().ByID(ctx, listingID)
	if err != nil {
		return err
	}
	if err := listing.UpdateRating(average, len(all), now); err != nil {
		return err
	}
	return unit.Listings().Save(ctx, listing)
}
