package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"github.com/calemaley/airbnb/internal/app/dto"
	meapp "github.com/calemaley/airbnb/internal/app/handlers/me"
	"github.com/calemaley/airbnb/internal/app/queries"
	authsvc "github.com/calemaley/airbnb/internal/app/services/auth"
	domainuser "github.com/calemaley/airbnb/internal/domain/user"
)

type MeHandler struct {
	Queries queries.Bus
	Auth    *authsvc.Service
	Logger  *slog.Logger
}

func (h MeHandler) ListBookings(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := meapp.ListGuestBookingsQuery{GuestID: user.ID}
	result, err := queries.Ask[meapp.ListGuestBookingsQuery, dto.GuestBookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("me bookings query failed", "error", err, "user_id", user.ID)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h MeHandler) UpdateProfile(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Auth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile service unavailable"})
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	updated, err := h.Auth.UpdateProfile(c.Request.Context(), user.ID, authsvc.ProfileParams{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainuser.ErrNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domainuser.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			if h.Logger != nil {
				h.Logger.Error("profile update failed", "error", err, "user_id", user.ID)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(updated))
}

var _ MeHTTP = (*MeHandler)(nil)
