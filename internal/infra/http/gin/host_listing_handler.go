package ginserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calemaley/airbnb/internal/app/commands"
	"github.com/calemaley/airbnb/internal/app/dto"
	listingapp "github.com/calemaley/airbnb/internal/app/handlers/listings"
	"github.com/calemaley/airbnb/internal/app/queries"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
)

const maxListingPhotoSizeBytes int64 = 10 * 1024 * 1024

// PhotoUploader stores a listing photo and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, objectKey, contentType string, r io.Reader, size int64) (string, error)
}

type HostListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Uploader PhotoUploader
	Logger   *slog.Logger
}

type hostListingRequest struct {
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Category    string   `json:"category"`
	NightlyRate int64    `json:"nightly_rate"`
	PriceType   string   `json:"price_type"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Amenities   []string `json:"amenities"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
}

func (r hostListingRequest) payload() listingapp.HostListingPayload {
	return listingapp.HostListingPayload{
		Name:        r.Name,
		Location:    r.Location,
		Category:    r.Category,
		NightlyRate: r.NightlyRate,
		PriceType:   r.PriceType,
		Description: r.Description,
		Images:      r.Images,
		Amenities:   r.Amenities,
		Lat:         r.Lat,
		Lng:         r.Lng,
	}
}

func (h HostListingHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Queries == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("queries bus unavailable"))
		return
	}
	query := listingapp.HostListingsQuery{
		HostID: p.ID,
		Limit:  parseIntWithDefault(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[listingapp.HostListingsQuery, dto.ListingCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}
	var req hostListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}
	cmd := listingapp.CreateHostListingCommand{
		HostID:    p.ID,
		HostName:  p.Name,
		HostPhone: p.Phone,
		Payload:   req.payload(),
	}
	result, err := commands.Dispatch[listingapp.CreateHostListingCommand, *dto.ListingOverview](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/host/listings/%s", result.ID))
	c.JSON(http.StatusCreated, result)
}

func (h HostListingHandler) Update(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}
	var req hostListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}
	cmd := listingapp.UpdateHostListingCommand{
		HostID:    p.ID,
		ListingID: c.Param("id"),
		Payload:   req.payload(),
	}
	result, err := commands.Dispatch[listingapp.UpdateHostListingCommand, *dto.ListingOverview](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Publish(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}
	cmd := listingapp.PublishHostListingCommand{
		HostID:    p.ID,
		ListingID: c.Param("id"),
	}
	result, err := commands.Dispatch[listingapp.PublishHostListingCommand, *dto.ListingOverview](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Suspend(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.respondWithError(c, http.StatusBadRequest, err)
			return
		}
	}
	cmd := listingapp.SuspendHostListingCommand{
		HostID:    p.ID,
		ListingID: c.Param("id"),
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[listingapp.SuspendHostListingCommand, *dto.ListingOverview](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) UploadPhoto(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Uploader == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("photo storage unavailable"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, fmt.Errorf("file is required: %w", err))
		return
	}
	if fileHeader.Size <= 0 {
		h.respondWithError(c, http.StatusBadRequest, errors.New("file is empty"))
		return
	}
	if fileHeader.Size > maxListingPhotoSizeBytes {
		h.respondWithError(c, http.StatusBadRequest, fmt.Errorf("file too large (max %d MB)", maxListingPhotoSizeBytes/1024/1024))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxListingPhotoSizeBytes+1024))
	if err != nil {
		h.respondWithError(c, http.StatusInternalServerError, fmt.Errorf("cannot read file: %w", err))
		return
	}
	if int64(len(data)) > maxListingPhotoSizeBytes {
		h.respondWithError(c, http.StatusBadRequest, fmt.Errorf("file too large (max %d MB)", maxListingPhotoSizeBytes/1024/1024))
		return
	}

	contentType := http.DetectContentType(data)
	if !isAllowedImageType(contentType) {
		h.respondWithError(c, http.StatusBadRequest, fmt.Errorf("unsupported content type: %s", contentType))
		return
	}

	objectKey := buildPhotoObjectKey(p.ID, fileHeader.Filename, contentType)
	url, err := h.Uploader.Upload(c.Request.Context(), objectKey, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		h.respondWithError(c, http.StatusInternalServerError, fmt.Errorf("photo upload failed: %w", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url, "object_key": objectKey})
}

func (h HostListingHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, listingapp.ErrListingNotOwned),
		errors.Is(err, domainlistings.ErrNotFound):
		h.respondWithError(c, http.StatusNotFound, err)
	case errors.Is(err, listingapp.ErrHostRequired),
		errors.Is(err, listingapp.ErrListingRequired),
		errors.Is(err, domainlistings.ErrNameRequired),
		errors.Is(err, domainlistings.ErrLocationRequired),
		errors.Is(err, domainlistings.ErrInvalidCategory),
		errors.Is(err, domainlistings.ErrInvalidPriceType),
		errors.Is(err, domainlistings.ErrNightlyRate),
		errors.Is(err, domainlistings.ErrInvalidState):
		h.respondWithError(c, http.StatusBadRequest, err)
	default:
		h.respondWithError(c, http.StatusInternalServerError, err)
	}
}

func (h HostListingHandler) respondWithError(c *gin.Context, status int, err error) {
	if h.Logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath()}
		if host, ok := currentPrincipal(c); ok {
			fields = append(fields, "host_id", host.ID)
		}
		h.Logger.Error("host listing request failed", fields...)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func isAllowedImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func extensionForContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

func buildPhotoObjectKey(hostID, filename, contentType string) string {
	ext := extensionForContentType(contentType)
	if ext == "" {
		ext = strings.ToLower(path.Ext(filename))
	}
	if ext == "" {
		ext = ".img"
	}
	return fmt.Sprintf("hosts/%s/%s%s", sanitizePathToken(hostID), uuid.NewString(), ext)
}

func sanitizePathToken(value string) string {
	if strings.TrimSpace(value) == "" {
		return "host"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

var _ HostListingHTTP = HostListingHandler{}
