package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calemaley/airbnb/internal/app/policies"
	domainavailability "github.com/calemaley/airbnb/internal/domain/availability"
	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainpricing "github.com/calemaley/airbnb/internal/domain/pricing"
	domainrange "github.com/calemaley/airbnb/internal/domain/shared/daterange"
	"github.com/calemaley/airbnb/internal/domain/shared/money"
	"github.com/calemaley/airbnb/internal/infra/storage/memory"
)

type staticPricing struct{}

func (staticPricing) Quote(ctx context.Context, listing *domainlistings.Listing, dr domainrange.DateRange, guests int) (domainpricing.Quote, error) {
	quote := domainpricing.Quote{
		Nights:  dr.Nights(),
		Nightly: money.KES(listing.NightlyRate),
	}
	if err := quote.RecalculateTotal(); err != nil {
		return domainpricing.Quote{}, err
	}
	return quote, nil
}

type stubPayments struct {
	verification policies.Verification
	err          error
}

func (s stubPayments) Verify(ctx context.Context, reference string) (policies.Verification, error) {
	if s.err != nil {
		return policies.Verification{}, s.err
	}
	v := s.verification
	v.Reference = reference
	return v, nil
}

func (s stubPayments) Refund(ctx context.Context, reference string, amount money.Money) error {
	return nil
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
}

func seedListing(t *testing.T, factory memory.Factory) *domainlistings.Listing {
	t.Helper()
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          "lst-1",
		Host:        "host-1",
		HostName:    "Wanjiru",
		Name:        "Diani Beach Cottage",
		Location:    "Diani, Kwale",
		Category:    domainlistings.CategoryMidRange,
		NightlyRate: 5000,
		PriceType:   domainlistings.PriceFixed,
		Now:         fixedNow(),
	})
	if err != nil {
		t.Fatalf("NewListing() error = %v", err)
	}
	if err := listing.Activate(fixedNow()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if err := factory.ListingsRepo.Save(context.Background(), listing); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return listing
}

func newHandler(factory memory.Factory, payments policies.PaymentsPort) *RequestBookingHandler {
	return &RequestBookingHandler{
		UoWFactory: factory,
		Pricing:    staticPricing{},
		Payments:   payments,
		Outbox:     memory.NewOutbox(nil),
		Now:        fixedNow,
	}
}

func bookingCmd(id string) RequestBookingCommand {
	return RequestBookingCommand{
		CommandID:  id,
		ListingID:  "lst-1",
		GuestID:    "guest-1",
		CheckIn:    time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Guests:     2,
		PaymentRef: "pay-ref-1",
	}
}

func TestRequestBookingConfirmsAndBlocksCalendar(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory)
	payments := stubPayments{verification: policies.Verification{Captured: true, Amount: money.KES(25000)}}
	handler := newHandler(factory, payments)

	res, err := handler.Handle(context.Background(), bookingCmd("bk-1"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if res.BookingID != "bk-1" {
		t.Fatalf("BookingID = %q, want bk-1", res.BookingID)
	}

	saved, err := factory.BookingRepo.ByID(context.Background(), "bk-1")
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if saved.State != domainbooking.StateConfirmed {
		t.Fatalf("State = %q, want %q", saved.State, domainbooking.StateConfirmed)
	}
	if saved.Price.Total.Amount != 25000 {
		t.Fatalf("Total = %d, want 25000", saved.Price.Total.Amount)
	}

	calendar, err := factory.AvailabilityRepo.Calendar(context.Background(), "lst-1")
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	if len(calendar.Blocks) != 1 {
		t.Fatalf("Blocks = %d, want 1", len(calendar.Blocks))
	}
}

func TestRequestBookingRejectsOverlap(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory)
	payments := stubPayments{verification: policies.Verification{Captured: true, Amount: money.KES(25000)}}
	handler := newHandler(factory, payments)

	if _, err := handler.Handle(context.Background(), bookingCmd("bk-1")); err != nil {
		t.Fatalf("first Handle() error = %v", err)
	}

	second := bookingCmd("bk-2")
	second.CheckIn = time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC)
	second.CheckOut = time.Date(2024, 7, 14, 0, 0, 0, 0, time.UTC)
	second.GuestID = "guest-2"
	payments2 := stubPayments{verification: policies.Verification{Captured: true, Amount: money.KES(10000)}}
	handler2 := newHandler(factory, payments2)

	_, err := handler2.Handle(context.Background(), second)
	if !errors.Is(err, domainavailability.ErrOverlappingRange) {
		t.Fatalf("Handle() error = %v, want ErrOverlappingRange", err)
	}
	// the charge already went through, so the rejection must say so
	if !errors.Is(err, ErrPaymentCaptured) {
		t.Fatalf("Handle() error = %v, want ErrPaymentCaptured wrap", err)
	}

	if _, err := factory.BookingRepo.ByID(context.Background(), "bk-2"); !errors.Is(err, domainbooking.ErrBookingNotFound) {
		t.Fatalf("second booking persisted, want not found, got %v", err)
	}
}

func TestRequestBookingRejectedOverlapRecordsNoEvents(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory)
	payments := stubPayments{verification: policies.Verification{Captured: true, Amount: money.KES(25000)}}

	if _, err := newHandler(factory, payments).Handle(context.Background(), bookingCmd("bk-1")); err != nil {
		t.Fatalf("first Handle() error = %v", err)
	}

	box := memory.NewOutbox(nil)
	handler2 := &RequestBookingHandler{
		UoWFactory: factory,
		Pricing:    staticPricing{},
		Payments:   stubPayments{verification: policies.Verification{Captured: true, Amount: money.KES(10000)}},
		Outbox:     box,
		Now:        fixedNow,
	}

	second := bookingCmd("bk-2")
	second.CheckIn = time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC)
	second.CheckOut = time.Date(2024, 7, 14, 0, 0, 0, 0, time.UTC)
	second.GuestID = "guest-2"

	if _, err := handler2.Handle(context.Background(), second); !errors.Is(err, domainavailability.ErrOverlappingRange) {
		t.Fatalf("Handle() error = %v, want ErrOverlappingRange", err)
	}
	// the rejection rolls the transaction back, so nothing may be queued
	if pending := box.Pending(); len(pending) != 0 {
		t.Fatalf("Pending() = %d records, want 0", len(pending))
	}
}

func TestRequestBookingBackToBackStaysAllowed(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory)
	payments := stubPayments{verification: policies.Verification{Captured: true, Amount: money.KES(25000)}}
	handler := newHandler(factory, payments)

	if _, err := handler.Handle(context.Background(), bookingCmd("bk-1")); err != nil {
		t.Fatalf("first Handle() error = %v", err)
	}

	second := bookingCmd("bk-2")
	second.CheckIn = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	second.CheckOut = time.Date(2024, 7, 18, 0, 0, 0, 0, time.UTC)
	second.GuestID = "guest-2"
	payments2 := stubPayments{verification: policies.Verification{Captured: true, Amount: money.KES(15000)}}
	handler2 := newHandler(factory, payments2)

	if _, err := handler2.Handle(context.Background(), second); err != nil {
		t.Fatalf("back-to-back Handle() error = %v", err)
	}
}

func TestRequestBookingContactOnlyGuest(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory)
	payments := stubPayments{verification: policies.Verification{Captured: true, Amount: money.KES(25000)}}
	handler := newHandler(factory, payments)

	cmd := bookingCmd("bk-anon")
	cmd.GuestID = ""
	cmd.GuestName = "Walk-in Guest"
	cmd.GuestEmail = "walkin@example.com"
	cmd.GuestPhone = "+254700000000"

	if err := cmd.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	res, err := handler.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	saved, err := factory.BookingRepo.ByID(context.Background(), domainbooking.BookingID(res.BookingID))
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if saved.GuestID != "" {
		t.Fatalf("GuestID = %q, want empty", saved.GuestID)
	}
	if saved.Contact.Email != "walkin@example.com" {
		t.Fatalf("Contact.Email = %q, want walkin@example.com", saved.Contact.Email)
	}
}

func TestRequestBookingValidateRequiresIdentity(t *testing.T) {
	cmd := bookingCmd("bk-x")
	cmd.GuestID = ""

	if err := cmd.Validate(); !errors.Is(err, domainbooking.ErrGuestRequired) {
		t.Fatalf("Validate() error = %v, want ErrGuestRequired", err)
	}
}

func TestRequestBookingRejectsOwnListing(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory)
	payments := stubPayments{verification: policies.Verification{Captured: true, Amount: money.KES(25000)}}
	handler := newHandler(factory, payments)

	cmd := bookingCmd("bk-1")
	cmd.GuestID = "host-1"

	_, err := handler.Handle(context.Background(), cmd)
	if !errors.Is(err, domainbooking.ErrOwnListing) {
		t.Fatalf("Handle() error = %v, want ErrOwnListing", err)
	}
}

func TestRequestBookingRejectsUncapturedPayment(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory)
	payments := stubPayments{verification: policies.Verification{Captured: false}}
	handler := newHandler(factory, payments)

	_, err := handler.Handle(context.Background(), bookingCmd("bk-1"))
	if !errors.Is(err, policies.ErrPaymentNotCaptured) {
		t.Fatalf("Handle() error = %v, want ErrPaymentNotCaptured", err)
	}
}

func TestRequestBookingRejectsAmountMismatch(t *testing.T) {
	factory := memory.NewFactory()
	seedListing(t, factory)
	payments := stubPayments{verification: policies.Verification{Captured: true, Amount: money.KES(100)}}
	handler := newHandler(factory, payments)

	_, err := handler.Handle(context.Background(), bookingCmd("bk-1"))
	if !errors.Is(err, policies.ErrAmountMismatch) {
		t.Fatalf("Handle() error = %v, want ErrAmountMismatch", err)
	}
}
