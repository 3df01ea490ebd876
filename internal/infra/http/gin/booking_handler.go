package ginserver

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calemaley/airbnb/internal/app/commands"
	bookingapp "github.com/calemaley/airbnb/internal/app/handlers/booking"
	"github.com/calemaley/airbnb/internal/app/policies"
	domainavailability "github.com/calemaley/airbnb/internal/domain/availability"
	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainrange "github.com/calemaley/airbnb/internal/domain/shared/daterange"
)

type BookingHandler struct {
	Commands commands.Bus
}

type createBookingRequest struct {
	ListingID  string    `json:"listing_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Guests     int       `json:"guests"`
	PaymentRef string    `json:"payment_ref"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	GuestPhone string    `json:"guest_phone"`
}

// Create confirms a stay. Authenticated callers book under their account;
// anonymous callers check out as guests by supplying contact details, which
// the command validation requires in place of an account id.
func (h BookingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		CommandID:       generateCommandID(),
		ListingID:       req.ListingID,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		PaymentRef:      req.PaymentRef,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	if user, ok := currentPrincipal(c); ok {
		cmd.GuestID = user.ID
		cmd.GuestName = user.Name
		cmd.GuestEmail = user.Email
		cmd.GuestPhone = user.Phone
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainlistings.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
	case errors.Is(err, domainavailability.ErrOverlappingRange):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, policies.ErrPaymentNotCaptured),
		errors.Is(err, policies.ErrAmountMismatch):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrCheckInInPast),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainbooking.ErrGuestRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrOwnListing):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
