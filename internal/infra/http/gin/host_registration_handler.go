package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"github.com/calemaley/airbnb/internal/app/commands"
	"github.com/calemaley/airbnb/internal/app/dto"
	hostapp "github.com/calemaley/airbnb/internal/app/handlers/hosts"
	"github.com/calemaley/airbnb/internal/app/policies"
	"github.com/calemaley/airbnb/internal/app/queries"
	domainhosts "github.com/calemaley/airbnb/internal/domain/hosts"
)

type HostRegistrationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type registerHostRequest struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Tier          string `json:"tier"`
	PaymentMethod string `json:"payment_method"`
	PaymentRef    string `json:"payment_ref"`
}

func (h HostRegistrationHandler) Register(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req registerHostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := hostapp.RegisterHostCommand{
		UserID:          user.ID,
		FullName:        req.FullName,
		Email:           req.Email,
		Tier:            req.Tier,
		PaymentMethod:   req.PaymentMethod,
		PaymentRef:      req.PaymentRef,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[hostapp.RegisterHostCommand, *dto.HostRegistration](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondHostRegistrationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostRegistrationHandler) Promo(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	result, err := queries.Ask[hostapp.PromoStatusQuery, dto.PromoStatus](c.Request.Context(), h.Queries, hostapp.PromoStatusQuery{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func respondHostRegistrationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainhosts.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, policies.ErrPaymentNotCaptured),
		errors.Is(err, policies.ErrAmountMismatch):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domainhosts.ErrNameRequired),
		errors.Is(err, domainhosts.ErrEmailRequired),
		errors.Is(err, domainhosts.ErrInvalidTier),
		errors.Is(err, domainhosts.ErrInvalidPaymentMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

var _ HostRegistrationHTTP = HostRegistrationHandler{}
