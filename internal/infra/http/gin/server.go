package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"github.com/calemaley/airbnb/internal/infra/config"
	"github.com/calemaley/airbnb/internal/infra/obs"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type ListingHTTP interface {
	Catalog(c *gin.Context)
	Overview(c *gin.Context)
	Reviews(c *gin.Context)
}

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
}

type ReviewHTTP interface {
	Submit(c *gin.Context)
}

type MeHTTP interface {
	ListBookings(c *gin.Context)
	UpdateProfile(c *gin.Context)
}

type HostListingHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Publish(c *gin.Context)
	Suspend(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type HostBookingHTTP interface {
	List(c *gin.Context)
}

type HostRegistrationHTTP interface {
	Register(c *gin.Context)
	Promo(c *gin.Context)
}

type AssistantHTTP interface {
	Ask(c *gin.Context)
}

type Handlers struct {
	Auth             AuthHTTP
	Listing          ListingHTTP
	Availability     AvailabilityHTTP
	Booking          BookingHTTP
	Review           ReviewHTTP
	Me               MeHTTP
	HostListing      HostListingHTTP
	HostBooking      HostBookingHTTP
	HostRegistration HostRegistrationHTTP
	Assistant        AssistantHTTP
	AuthMiddleware   gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id", h.Listing.Overview)
		api.GET("/listings/:id/reviews", h.Listing.Reviews)
	}
	if h.Availability != nil {
		api.GET("/listings/:id/calendar", h.Availability.Calendar)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
	}
	if h.Review != nil {
		api.POST("/reviews", h.Review.Submit)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/bookings", h.Me.ListBookings)
		meGroup.PUT("/profile", h.Me.UpdateProfile)
	}
	if h.HostListing != nil {
		hostGroup := api.Group("/host/listings")
		hostGroup.GET("", h.HostListing.List)
		hostGroup.POST("", h.HostListing.Create)
		hostGroup.PUT("/:id", h.HostListing.Update)
		hostGroup.POST("/:id/publish", h.HostListing.Publish)
		hostGroup.POST("/:id/suspend", h.HostListing.Suspend)
		hostGroup.POST("/photos", h.HostListing.UploadPhoto)
	}
	if h.HostBooking != nil {
		api.GET("/host/bookings", h.HostBooking.List)
	}
	if h.HostRegistration != nil {
		api.POST("/host/registrations", h.HostRegistration.Register)
		api.GET("/host/registrations/promo", h.HostRegistration.Promo)
	}
	if h.Assistant != nil {
		api.POST("/assistant/ask", h.Assistant.Ask)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func corsConfig(cfg config.Config) cors.Config {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
