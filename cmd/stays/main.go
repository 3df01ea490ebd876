package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/calemaley/airbnb/internal/app/commands"
	assistantapp "github.com/calemaley/airbnb/internal/app/handlers/assistant"
	availabilityapp "github.com/calemaley/airbnb/internal/app/handlers/availability"
	bookingapp "github.com/calemaley/airbnb/internal/app/handlers/booking"
	hostsapp "github.com/calemaley/airbnb/internal/app/handlers/hosts"
	listingapp "github.com/calemaley/airbnb/internal/app/handlers/listings"
	meapp "github.com/calemaley/airbnb/internal/app/handlers/me"
	reviewsapp "github.com/calemaley/airbnb/internal/app/handlers/reviews"
	"github.com/calemaley/airbnb/internal/app/middleware"
	appoutbox "github.com/calemaley/airbnb/internal/app/outbox"
	"github.com/calemaley/airbnb/internal/app/policies"
	"github.com/calemaley/airbnb/internal/app/queries"
	authsvc "github.com/calemaley/airbnb/internal/app/services/auth"
	"github.com/calemaley/airbnb/internal/app/uow"
	domainauth "github.com/calemaley/airbnb/internal/domain/auth"
	domainavailability "github.com/calemaley/airbnb/internal/domain/availability"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainpricing "github.com/calemaley/airbnb/internal/domain/pricing"
	domainuser "github.com/calemaley/airbnb/internal/domain/user"
	"github.com/calemaley/airbnb/internal/infra/assistant"
	"github.com/calemaley/airbnb/internal/infra/broker/kafka"
	"github.com/calemaley/airbnb/internal/infra/config"
	mongodb "github.com/calemaley/airbnb/internal/infra/db/mongo"
	ginserver "github.com/calemaley/airbnb/internal/infra/http/gin"
	"github.com/calemaley/airbnb/internal/infra/notifications"
	"github.com/calemaley/airbnb/internal/infra/obs"
	infraoutbox "github.com/calemaley/airbnb/internal/infra/outbox"
	"github.com/calemaley/airbnb/internal/infra/payments"
	"github.com/calemaley/airbnb/internal/infra/security"
	"github.com/calemaley/airbnb/internal/infra/storage/memory"
	s3storage "github.com/calemaley/airbnb/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if cfg.StorageMode == "memory" {
		fixturesPath := getenv("LISTINGS_FIXTURES", "")
		if fixturesPath == "" {
			fixturesPath = defaultListingFixturesPath()
		}
		if err := app.loadListingFixtures(ctx, fixturesPath, logger); err != nil {
			logger.Warn("listing fixtures load failed", "error", err, "path", fixturesPath)
		}
	}

	app.startBackground(ctx, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	ready    func() error
	close    func()

	listings     domainlistings.ListingRepository
	availability domainavailability.Repository

	outboxWorker *infraoutbox.Worker
	consumer     *kafka.Consumer
	topics       []string
}

type storageBackend struct {
	factory      uow.UoWFactory
	idStore      middleware.IdempotencyStore
	outbox       appoutbox.Outbox
	sessions     domainauth.SessionStore
	users        domainuser.Repository
	listings     domainlistings.ListingRepository
	availability domainavailability.Repository
	events       *infraoutbox.Store
	ready        func() error
	close        func()
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	backend, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	authService := &authsvc.Service{
		Users:      backend.users,
		Sessions:   backend.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	pricingPort := memory.PricingPortAdapter{Calculator: domainpricing.NightlyRateCalculator{}}

	var paymentsPort policies.PaymentsPort
	if cfg.PaystackSecretKey != "" {
		paymentsPort = &payments.PaystackClient{
			Client:    &http.Client{Timeout: cfg.PaystackTimeout},
			BaseURL:   cfg.PaystackBaseURL,
			SecretKey: cfg.PaystackSecretKey,
			Logger:    logger,
		}
	} else {
		logger.Warn("paystack secret key missing, payment verification disabled")
	}

	var assistantPort policies.AssistantPort
	if cfg.AssistantAPIKey != "" {
		assistantPort = &assistant.GeminiClient{
			Client:  &http.Client{Timeout: cfg.AssistantTimeout},
			BaseURL: cfg.AssistantBaseURL,
			APIKey:  cfg.AssistantAPIKey,
			Model:   cfg.AssistantModel,
			Logger:  logger,
		}
	} else {
		logger.Warn("assistant api key missing, concierge disabled")
	}

	var uploader ginserver.PhotoUploader
	if cfg.S3Endpoint != "" {
		client, err := s3storage.NewClient(s3storage.Config{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			logger.Warn("photo storage unavailable", "error", err)
			uploader = s3storage.NoopUploader{}
		} else {
			uploader = client
		}
	} else {
		uploader = s3storage.NoopUploader{}
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: backend.factory,
		Pricing:    pricingPort,
		Payments:   paymentsPort,
		Outbox:     backend.outbox,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, listingapp.CreateHostListingCommand{}.Key(), &listingapp.CreateHostListingHandler{
		Logger:  logger,
		Outbox:  backend.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, listingapp.UpdateHostListingCommand{}.Key(), &listingapp.UpdateHostListingHandler{
		Logger:  logger,
		Outbox:  backend.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, listingapp.PublishHostListingCommand{}.Key(), &listingapp.PublishHostListingHandler{
		Logger:  logger,
		Outbox:  backend.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, listingapp.SuspendHostListingCommand{}.Key(), &listingapp.SuspendHostListingHandler{
		Logger:  logger,
		Outbox:  backend.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, hostsapp.RegisterHostCommand{}.Key(), &hostsapp.RegisterHostHandler{
		UoWFactory: backend.factory,
		Payments:   paymentsPort,
		Logger:     logger,
		Outbox:     backend.outbox,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, reviewsapp.SubmitReviewCommand{}.Key(), &reviewsapp.SubmitReviewHandler{
		UoWFactory: backend.factory,
		Logger:     logger,
		Outbox:     backend.outbox,
		Encoder:    encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingapp.SearchCatalogQuery{}.Key(), &listingapp.SearchCatalogHandler{
		UoWFactory: backend.factory,
	})
	queries.RegisterHandler(queryBus, listingapp.GetOverviewQuery{}.Key(), &listingapp.GetOverviewHandler{
		UoWFactory: backend.factory,
	})
	queries.RegisterHandler(queryBus, listingapp.HostListingsQuery{}.Key(), &listingapp.HostListingsHandler{
		UoWFactory: backend.factory,
	})
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{
		UoWFactory: backend.factory,
	})
	queries.RegisterHandler(queryBus, reviewsapp.ListListingReviewsQuery{}.Key(), &reviewsapp.ListListingReviewsHandler{
		UoWFactory: backend.factory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, meapp.ListGuestBookingsQuery{}.Key(), &meapp.ListGuestBookingsHandler{
		UoWFactory: backend.factory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, bookingapp.ListHostBookingsQuery{}.Key(), &bookingapp.ListHostBookingsHandler{
		UoWFactory: backend.factory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, hostsapp.PromoStatusQuery{}.Key(), &hostsapp.PromoStatusHandler{
		UoWFactory: backend.factory,
	})
	queries.RegisterHandler(queryBus, assistantapp.AskQuery{}.Key(), &assistantapp.AskHandler{
		Assistant: assistantPort,
		Logger:    logger,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(backend.idStore, nil),
		middleware.Transaction(backend.factory, nil),
		middleware.OutboxFlush(backend.outbox),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	app := &application{
		handlers: ginserver.Handlers{
			Auth: ginserver.AuthHandler{
				Service: authService,
				Logger:  logger,
			},
			Listing: ginserver.ListingHandler{
				Queries: queryBusWithMiddleware,
			},
			Availability: ginserver.AvailabilityHandler{
				Queries: queryBusWithMiddleware,
			},
			Booking: ginserver.BookingHandler{
				Commands: commandBusWithMiddleware,
			},
			Review: ginserver.ReviewHandler{
				Commands: commandBusWithMiddleware,
			},
			Me: ginserver.MeHandler{
				Queries: queryBusWithMiddleware,
				Auth:    authService,
				Logger:  logger,
			},
			HostListing: ginserver.HostListingHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Uploader: uploader,
				Logger:   logger,
			},
			HostBooking: ginserver.HostBookingHandler{
				Queries: queryBusWithMiddleware,
				Logger:  logger,
			},
			HostRegistration: ginserver.HostRegistrationHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
			Assistant: ginserver.AssistantHandler{
				Queries: queryBusWithMiddleware,
			},
			AuthMiddleware: ginserver.AuthMiddleware{
				Service: authService,
				Logger:  logger,
			}.Handle,
		},
		ready:        backend.ready,
		close:        backend.close,
		listings:     backend.listings,
		availability: backend.availability,
	}

	if len(cfg.KafkaBrokers) > 0 && backend.events != nil {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		app.outboxWorker = &infraoutbox.Worker{
			Store:       backend.events,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			ID:          workerID(),
		}

		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "stays-notifications", nil, notifications.Handler{Logger: logger})
		if err != nil {
			logger.Warn("notification consumer unavailable", "error", err)
		} else {
			app.consumer = consumer
			app.topics = notificationTopics(cfg.KafkaTopicPrefix)
		}

		innerClose := app.close
		app.close = func() {
			if app.consumer != nil {
				_ = app.consumer.Close()
			}
			_ = producer.Close()
			if innerClose != nil {
				innerClose()
			}
		}
	} else if len(cfg.KafkaBrokers) > 0 {
		logger.Warn("kafka brokers configured but event relay needs mongo storage, skipping")
	}

	return app, nil
}

// startBackground launches the outbox relay and the notification consumer.
// Both stop when ctx is cancelled.
func (a *application) startBackground(ctx context.Context, logger *slog.Logger) {
	if a.outboxWorker != nil {
		go func() {
			if err := a.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox relay stopped", "error", err)
			}
		}()
	}
	if a.consumer != nil {
		go func() {
			if err := a.consumer.Run(ctx, a.topics); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notification consumer stopped", "error", err)
			}
		}()
	}
}

func buildStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storageBackend, error) {
	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storageBackend{}, fmt.Errorf("mongo connect: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx); err != nil {
			return storageBackend{}, fmt.Errorf("mongo ping: %w", err)
		}
		logger.Info("mongo connected", "database", cfg.MongoDB)

		factory := mongodb.NewFactory(client.DB, domainpricing.NightlyRateCalculator{})
		events := infraoutbox.NewStore(client.DB)
		return storageBackend{
			factory:      factory,
			idStore:      mongodb.NewIdempotencyStore(client.DB),
			outbox:       events,
			sessions:     mongodb.NewSessionStore(client.DB),
			users:        mongodb.NewUserRepository(client.DB),
			listings:     mongodb.NewListingRepository(client.DB),
			availability: mongodb.NewAvailabilityRepository(client.DB),
			events:       events,
			ready: func() error {
				readyCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return client.Ping(readyCtx)
			},
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Close(closeCtx); err != nil {
					logger.Warn("mongo disconnect failed", "error", err)
				}
			},
		}, nil
	default:
		factory := memory.NewFactory()
		return storageBackend{
			factory:      factory,
			idStore:      memory.NewIdempotencyStore(),
			outbox:       memory.NewOutbox(nil),
			sessions:     memory.NewSessionStore(),
			users:        factory.UsersRepo,
			listings:     factory.ListingsRepo,
			availability: factory.AvailabilityRepo,
			ready:        func() error { return nil },
			close:        func() {},
		}, nil
	}
}

func (a *application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("listing fixtures file empty", "path", path)
		return nil
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
			ID:          domainlistings.ListingID(fx.ID),
			Host:        domainlistings.HostID(fx.Host),
			HostName:    fx.HostName,
			HostPhone:   fx.HostPhone,
			Name:        fx.Name,
			Location:    fx.Location,
			Category:    domainlistings.Category(fx.Category),
			NightlyRate: fx.NightlyRate,
			PriceType:   domainlistings.PriceType(fx.PriceType),
			Description: fx.Description,
			Images:      append([]string(nil), fx.Images...),
			Amenities:   append([]string(nil), fx.Amenities...),
			Lat:         fx.Lat,
			Lng:         fx.Lng,
			Now:         now,
		})
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := listing.Activate(now); err != nil {
			logger.Error("fixture activation failed", "listing_id", fx.ID, "error", err)
			continue
		}
		listing.ClearEvents()
		if err := a.listings.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		if _, err := a.availability.Calendar(ctx, listing.ID); err != nil {
			logger.Error("cannot prepare availability for fixture", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}

type listingFixture struct {
	ID          string   `json:"id"`
	Host        string   `json:"host"`
	HostName    string   `json:"host_name"`
	HostPhone   string   `json:"host_phone"`
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

func notificationTopics(prefix string) []string {
	topics := []string{"booking.events.v1", "hosts.events.v1"}
	if prefix == "" {
		return topics
	}
	prefixed := make([]string, 0, len(topics))
	for _, topic := range topics {
		prefixed = append(prefixed, prefix+topic)
	}
	return prefixed
}

func workerID() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return uuid.NewString()
}

func defaultListingFixturesPath() string {
	return filepath.Join("data", "listings.json")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
