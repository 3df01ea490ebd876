package ginserver

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"github.com/calemaley/airbnb/internal/app/commands"
	"github.com/calemaley/airbnb/internal/app/dto"
	reviewapp "github.com/calemaley/airbnb/internal/app/handlers/reviews"
	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainreviews "github.com/calemaley/airbnb/internal/domain/reviews"
)

type ReviewHandler struct {
	Commands commands.Bus
}

type submitReviewRequest struct {
	BookingID string  `json:"booking_id"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment"`
}

func (h ReviewHandler) Submit(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := reviewapp.SubmitReviewCommand{
		BookingID:  req.BookingID,
		AuthorID:   user.ID,
		AuthorName: user.Name,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Now:        time.Now(),
	}
	result, err := commands.Dispatch[reviewapp.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func respondReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainbooking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, reviewapp.ErrBookingOwnership):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, reviewapp.ErrStayNotFinished),
		errors.Is(err, domainreviews.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainreviews.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

var _ ReviewHTTP = ReviewHandler{}
