package reviews

import (
	"context"
	"errors"
	"testing"
	"time"

	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainpricing "github.com/calemaley/airbnb/internal/domain/pricing"
	domainreviews "github.com/calemaley/airbnb/internal/domain/reviews"
	domainrange "github.com/calemaley/airbnb/internal/domain/shared/daterange"
	"github.com/calemaley/airbnb/internal/domain/shared/money"
	"github.com/calemaley/airbnb/internal/infra/storage/memory"
)

var reviewNow = time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)

func seedStay(t *testing.T, factory memory.Factory, bookingID, guestID string) {
	t.Helper()
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          "lst-1",
		Host:        "host-1",
		HostName:    "Wanjiru",
		Name:        "Nairobi Loft",
		Location:    "Kilimani, Nairobi",
		Category:    domainlistings.CategoryLuxury,
		NightlyRate: 8000,
		PriceType:   domainlistings.PriceFixed,
		Now:         reviewNow.AddDate(0, -2, 0),
	})
	if err != nil {
		t.Fatalf("NewListing() error = %v", err)
	}
	if err := factory.ListingsRepo.Save(context.Background(), listing); err != nil {
		t.Fatalf("Save listing error = %v", err)
	}

	dr, err := domainrange.New(reviewNow.AddDate(0, -1, 0), reviewNow.AddDate(0, -1, 3))
	if err != nil {
		t.Fatalf("daterange.New() error = %v", err)
	}
	quote := domainpricing.Quote{Nights: dr.Nights(), Nightly: money.KES(8000)}
	if err := quote.RecalculateTotal(); err != nil {
		t.Fatalf("RecalculateTotal() error = %v", err)
	}
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(bookingID),
		Listing:   listing,
		GuestID:   guestID,
		Range:     dr,
		Guests:    2,
		Price:     quote,
		CreatedAt: reviewNow.AddDate(0, -1, -2),
	})
	if err != nil {
		t.Fatalf("NewBooking() error = %v", err)
	}
	if err := factory.BookingRepo.Save(context.Background(), booking); err != nil {
		t.Fatalf("Save booking error = %v", err)
	}
}

func reviewCmd(bookingID, authorID string, rating float64) SubmitReviewCommand {
	return SubmitReviewCommand{
		BookingID:  bookingID,
		AuthorID:   authorID,
		AuthorName: "Achieng",
		Rating:     rating,
		Comment:    "Great stay",
		Now:        reviewNow,
	}
}

func TestSubmitReviewRecomputesMean(t *testing.T) {
	factory := memory.NewFactory()
	seedStay(t, factory, "bk-1", "guest-1")
	seedSecondStay(t, factory, "bk-2", "guest-2")
	handler := &SubmitReviewHandler{UoWFactory: factory, Outbox: memory.NewOutbox(nil)}

	if _, err := handler.Handle(context.Background(), reviewCmd("bk-1", "guest-1", 5)); err != nil {
		t.Fatalf("first Handle() error = %v", err)
	}
	if _, err := handler.Handle(context.Background(), reviewCmd("bk-2", "guest-2", 4)); err != nil {
		t.Fatalf("second Handle() error = %v", err)
	}

	listing, err := factory.ListingsRepo.ByID(context.Background(), "lst-1")
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if listing.Rating != 4.5 {
		t.Fatalf("Rating = %v, want 4.5", listing.Rating)
	}
	if listing.ReviewCount != 2 {
		t.Fatalf("ReviewCount = %d, want 2", listing.ReviewCount)
	}
}

func seedSecondStay(t *testing.T, factory memory.Factory, bookingID, guestID string) {
	t.Helper()
	listing, err := factory.ListingsRepo.ByID(context.Background(), "lst-1")
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	dr, err := domainrange.New(reviewNow.AddDate(0, -1, 5), reviewNow.AddDate(0, -1, 8))
	if err != nil {
		t.Fatalf("daterange.New() error = %v", err)
	}
	quote := domainpricing.Quote{Nights: dr.Nights(), Nightly: money.KES(8000)}
	if err := quote.RecalculateTotal(); err != nil {
		t.Fatalf("RecalculateTotal() error = %v", err)
	}
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(bookingID),
		Listing:   listing,
		GuestID:   guestID,
		Range:     dr,
		Guests:    1,
		Price:     quote,
		CreatedAt: reviewNow.AddDate(0, -1, 4),
	})
	if err != nil {
		t.Fatalf("NewBooking() error = %v", err)
	}
	if err := factory.BookingRepo.Save(context.Background(), booking); err != nil {
		t.Fatalf("Save booking error = %v", err)
	}
}

func TestSubmitReviewRejectsDuplicate(t *testing.T) {
	factory := memory.NewFactory()
	seedStay(t, factory, "bk-1", "guest-1")
	handler := &SubmitReviewHandler{UoWFactory: factory, Outbox: memory.NewOutbox(nil)}

	if _, err := handler.Handle(context.Background(), reviewCmd("bk-1", "guest-1", 5)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	_, err := handler.Handle(context.Background(), reviewCmd("bk-1", "guest-1", 3))
	if !errors.Is(err, domainreviews.ErrAlreadyReviewed) {
		t.Fatalf("Handle() error = %v, want ErrAlreadyReviewed", err)
	}
}

func TestSubmitReviewRejectsForeignBooking(t *testing.T) {
	factory := memory.NewFactory()
	seedStay(t, factory, "bk-1", "guest-1")
	handler := &SubmitReviewHandler{UoWFactory: factory, Outbox: memory.NewOutbox(nil)}

	_, err := handler.Handle(context.Background(), reviewCmd("bk-1", "guest-2", 5))
	if !errors.Is(err, ErrBookingOwnership) {
		t.Fatalf("Handle() error = %v, want ErrBookingOwnership", err)
	}
}

func TestSubmitReviewRejectsOngoingStay(t *testing.T) {
	factory := memory.NewFactory()
	seedStay(t, factory, "bk-1", "guest-1")
	handler := &SubmitReviewHandler{UoWFactory: factory, Outbox: memory.NewOutbox(nil)}

	cmd := reviewCmd("bk-1", "guest-1", 5)
	cmd.Now = reviewNow.AddDate(0, -1, 1)

	_, err := handler.Handle(context.Background(), cmd)
	if !errors.Is(err, ErrStayNotFinished) {
		t.Fatalf("Handle() error = %v, want ErrStayNotFinished", err)
	}
}

func TestSubmitReviewRejectsBadRating(t *testing.T) {
	factory := memory.NewFactory()
	seedStay(t, factory, "bk-1", "guest-1")
	handler := &SubmitReviewHandler{UoWFactory: factory, Outbox: memory.NewOutbox(nil)}

	_, err := handler.Handle(context.Background(), reviewCmd("bk-1", "guest-1", 4.3))
	if !errors.Is(err, domainreviews.ErrInvalidRating) {
		t.Fatalf("Handle() error = %v, want ErrInvalidRating", err)
	}
}
