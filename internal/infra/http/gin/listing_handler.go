package ginserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"github.com/calemaley/airbnb/internal/app/dto"
	listingapp "github.com/calemaley/airbnb/internal/app/handlers/listings"
	reviewapp "github.com/calemaley/airbnb/internal/app/handlers/reviews"
	"github.com/calemaley/airbnb/internal/app/queries"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
)

// ListingHandler wires the public catalog queries to HTTP.
type ListingHandler struct {
	Queries queries.Bus
}

func (h ListingHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	query := listingapp.SearchCatalogQuery{
		Location:   c.Query("location"),
		Categories: splitCSV(c.Query("categories")),
		Amenities:  splitCSV(c.Query("amenities")),
		PriceMin:   parseInt64(c.Query("price_min")),
		PriceMax:   parseInt64(c.Query("price_max")),
		MinRating:  parseFloat(c.Query("min_rating")),
		Sort:       c.Query("sort"),
		Limit:      parseIntWithDefault(c.Query("limit"), 24),
		Offset:     parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[listingapp.SearchCatalogQuery, dto.ListingCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Overview(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	query := listingapp.GetOverviewQuery{ListingID: listingID}
	result, err := queries.Ask[listingapp.GetOverviewQuery, dto.ListingOverview](c.Request.Context(), h.Queries, query)
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Reviews(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	listingID := c.Param("id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing id is required"})
		return
	}
	query := reviewapp.ListListingReviewsQuery{
		ListingID: listingID,
		Limit:     parseIntWithDefault(c.Query("limit"), 20),
		Offset:    parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[reviewapp.ListListingReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseIntWithDefault(raw string, fallback int) int {
	value := parseInt(raw)
	if value == 0 {
		return fallback
	}
	return value
}

func parseInt64(raw string) int64 {
	value, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if value < 0 {
		return 0
	}
	return value
}

func parseFloat(raw string) float64 {
	value, _ := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if value < 0 {
		return 0
	}
	return value
}
