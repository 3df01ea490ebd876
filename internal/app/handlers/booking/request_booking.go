package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calemaley/airbnb/internal/app/commands"
	"github.com/calemaley/airbnb/internal/app/middleware"
	"github.com/calemaley/airbnb/internal/app/outbox"
	"github.com/calemaley/airbnb/internal/app/policies"
	"github.com/calemaley/airbnb/internal/app/uow"
	domainavailability "github.com/calemaley/airbnb/internal/domain/availability"
	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainrange "github.com/calemaley/airbnb/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

var (
	ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

	// ErrPaymentCaptured marks rejections that happen after the charge went
	// through, so the caller can route the guest to support with the payment
	// reference instead of a plain retry.
	ErrPaymentCaptured = errors.New("booking: payment captured but booking rejected")
)

// CapturedRejection wraps the underlying rejection together with the provider
// reference of the already captured charge.
func CapturedRejection(cause error, reference string) error {
	return fmt.Errorf("%w: ref %s: %w", ErrPaymentCaptured, reference, cause)
}

type RequestBookingCommand struct {
	CommandID       string
	ListingID       string
	GuestID         string
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	PaymentRef      string
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

// Contact exposes the denormalized contact details; with an empty GuestID
// they are the only identification of an unauthenticated guest.
func (c RequestBookingCommand) Contact() domainbooking.GuestContact {
	return domainbooking.GuestContact{
		Name:  c.GuestName,
		Email: c.GuestEmail,
		Phone: c.GuestPhone,
	}
}

func (c RequestBookingCommand) Validate() error {
	if c.GuestID == "" && c.Contact().Empty() {
		return domainbooking.ErrGuestRequired
	}
	if c.Guests < 1 {
		return domainbooking.ErrInvalidGuests
	}
	if !c.CheckOut.After(c.CheckIn) {
		return domainrange.ErrInvalidRange
	}
	return nil
}

type RequestBookingResult struct {
	BookingID string `json:"booking_id"`
}

// RequestBookingHandler confirms a stay. It quotes the price from the stored
// nightly rate, verifies the charge with the payment provider, reserves the
// date range on the listing calendar, and persists the booking, all inside a
// single unit of work. Overlap rejection happens here on the write path, not
// in the browser's date picker.
type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Pricing    policies.PricingPort
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
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

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := h.now()
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return nil, err
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}

	price, err := h.Pricing.Quote(ctx, listing, dr, cmd.Guests)
	if err != nil {
		return nil, err
	}

	captured := false
	if h.Payments != nil && cmd.PaymentRef != "" {
		verification, err := h.Payments.Verify(ctx, cmd.PaymentRef)
		if err != nil {
			return nil, err
		}
		if !verification.Captured {
			return nil, policies.ErrPaymentNotCaptured
		}
		if verification.Amount.Amount != price.Total.Amount || verification.Amount.Currency != price.Total.Currency {
			return nil, policies.ErrAmountMismatch
		}
		captured = true
	}

	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(cmd.CommandID),
		Listing:    listing,
		GuestID:    cmd.GuestID,
		Range:      dr,
		Guests:     cmd.Guests,
		Price:      price,
		PaymentRef: cmd.PaymentRef,
		Contact:    cmd.Contact(),
		CreatedAt:  now,
	})
	if err != nil {
		return nil, h.rejection(err, cmd.PaymentRef, captured)
	}

	calendar, err := unit.Availability().Calendar(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	if calendar == nil {
		calendar = domainavailability.NewCalendar(listing.ID)
	}
	if err := calendar.Reserve(dr, booking.ID, now); err != nil {
		// The rejection aborts the surrounding transaction, so anything the
		// failed reserve recorded would never leave the outbox; drop it.
		calendar.ClearEvents()
		return nil, h.rejection(err, cmd.PaymentRef, captured)
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return nil, err
	}

	if err := unit.Booking().Save(ctx, booking); err != nil {
		return nil, err
	}

	pending := append(calendar.PendingEvents(), booking.PendingEvents()...)
	calendar.ClearEvents()
	booking.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &RequestBookingResult{BookingID: string(booking.ID)}, nil
}

// rejection decorates post-capture failures so the payment reference is not
// lost when the booking itself is refused.
func (h *RequestBookingHandler) rejection(cause error, reference string, captured bool) error {
	if !captured {
		return cause
	}
	return CapturedRejection(cause, reference)
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
