package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"github.com/calemaley/airbnb/internal/app/dto"
	bookingapp "github.com/calemaley/airbnb/internal/app/handlers/booking"
	"github.com/calemaley/airbnb/internal/app/queries"
)

type HostBookingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h HostBookingHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := bookingapp.ListHostBookingsQuery{HostID: p.ID}
	result, err := queries.Ask[bookingapp.ListHostBookingsQuery, dto.HostBookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("host bookings query failed", "error", err, "host_id", p.ID)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostBookingHTTP = HostBookingHandler{}
