package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calemaley/airbnb/internal/app/commands"
	"github.com/calemaley/airbnb/internal/app/dto"
	"github.com/calemaley/airbnb/internal/app/outbox"
	"github.com/calemaley/airbnb/internal/app/uow"
	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainreviews "github.com/calemaley/airbnb/internal/domain/reviews"
)

const submitReviewKey = "reviews.submit"

var (
	ErrBookingOwnership = errors.New("reviews: booking does not belong to current user")
	ErrStayNotFinished  = errors.New("reviews: stay is not finished yet")
)

// SubmitReviewCommand creates a new review for a completed stay.
type SubmitReviewCommand struct {
	BookingID  string
	AuthorID   string
	AuthorName string
	Rating     float64
	Comment    string
	Now        time.Time
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

func (c SubmitReviewCommand) Validate() error {
	if c.BookingID == "" {
		return domainbooking.ErrBookingNotFound
	}
	if !domainreviews.ValidRating(c.Rating) {
		return domainreviews.ErrInvalidRating
	}
	return nil
}

// SubmitReviewHandler validates and stores a new review, then recomputes the
// listing's mean rating in the same unit of work.
type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return dto.Review{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return dto.Review{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	booking, err := unit.Booking().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.Review{}, err
	}
	if booking.GuestID != cmd.AuthorID {
		return dto.Review{}, ErrBookingOwnership
	}
	if !booking.Completed(now) {
		return dto.Review{}, ErrStayNotFinished
	}

	if existing, err := unit.Reviews().ByListingAndAuthor(ctx, booking.ListingID, cmd.AuthorID); err == nil && existing != nil {
		return dto.Review{}, domainreviews.ErrAlreadyReviewed
	} else if err != nil && !errors.Is(err, domainreviews.ErrNotFound) {
		return dto.Review{}, err
	}

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         domainreviews.ReviewID(uuid.NewString()),
		ListingID:  booking.ListingID,
		BookingID:  booking.ID,
		AuthorID:   cmd.AuthorID,
		AuthorName: cmd.AuthorName,
		Rating:     cmd.Rating,
		Comment:    cmd.Comment,
		CreatedAt:  now,
	})
	if err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.Review{}, err
	}

	if err := recalculateListingRating(ctx, unit, booking.ListingID, now); err != nil {
		return dto.Review{}, err
	}

	pending := review.PendingEvents()
	review.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return dto.Review{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.Review{}, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("review submitted",
			"booking_id", booking.ID, "listing_id", booking.ListingID,
			"author_id", cmd.AuthorID, "rating", cmd.Rating)
	}

	return dto.MapReview(review), nil
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
