package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/calemaley/airbnb/internal/app/commands"
	availabilityapp "github.com/calemaley/airbnb/internal/app/handlers/availability"
	bookingapp "github.com/calemaley/airbnb/internal/app/handlers/booking"
	listingapp "github.com/calemaley/airbnb/internal/app/handlers/listings"
	"github.com/calemaley/airbnb/internal/app/middleware"
	appoutbox "github.com/calemaley/airbnb/internal/app/outbox"
	"github.com/calemaley/airbnb/internal/app/queries"
	authsvc "github.com/calemaley/airbnb/internal/app/services/auth"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	"github.com/calemaley/airbnb/internal/infra/config"
	"github.com/calemaley/airbnb/internal/infra/obs"
	"github.com/calemaley/airbnb/internal/infra/security"
	"github.com/calemaley/airbnb/internal/infra/storage/memory"
)

type testEnv struct {
	server  *httptest.Server
	factory memory.Factory
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	factory := memory.NewFactory()
	outboxStore := memory.NewOutbox(nil)
	idStore := memory.NewIdempotencyStore()

	authService := &authsvc.Service{
		Users:      factory.UsersRepo,
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: factory,
		Pricing:    memory.PricingPortAdapter{},
		Outbox:     outboxStore,
		Encoder:    appoutbox.JSONEventEncoder{},
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingapp.SearchCatalogQuery{}.Key(), &listingapp.SearchCatalogHandler{
		UoWFactory: factory,
	})
	queries.RegisterHandler(queryBus, listingapp.GetOverviewQuery{}.Key(), &listingapp.GetOverviewHandler{
		UoWFactory: factory,
	})
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{
		UoWFactory: factory,
	})

	commandBusChained := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusChained := middleware.ChainQueries(queryBus)

	handlers := Handlers{
		Auth:         AuthHandler{Service: authService},
		Listing:      ListingHandler{Queries: queryBusChained},
		Availability: AvailabilityHandler{Queries: queryBusChained},
		Booking:      BookingHandler{Commands: commandBusChained},
		Me:           MeHandler{Queries: queryBusChained, Auth: authService},
		AuthMiddleware: AuthMiddleware{
			Service: authService,
		}.Handle,
	}

	srv := NewServer(config.Config{Env: "test"}, obs.Middleware{}, obs.HealthHandlers{
		Ready: func() error { return nil },
	}, handlers)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return testEnv{server: ts, factory: factory}
}

func (e testEnv) seedActiveListing(t *testing.T, id string) {
	t.Helper()
	now := time.Now()
	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          domainlistings.ListingID(id),
		Host:        "host-1",
		HostName:    "Hosty",
		Name:        "Garden Flat",
		Location:    "Karen, Nairobi",
		Category:    domainlistings.CategoryMidRange,
		NightlyRate: 4000,
		PriceType:   domainlistings.PriceFixed,
		Now:         now,
	})
	if err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	if err := listing.Activate(now); err != nil {
		t.Fatalf("activate listing: %v", err)
	}
	listing.ClearEvents()
	if err := e.factory.ListingsRepo.Save(context.Background(), listing); err != nil {
		t.Fatalf("save listing: %v", err)
	}
}

func (e testEnv) register(t *testing.T, email string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    email,
		"name":     "Test Guest",
		"password": "s3cret-pass",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if body.Token == "" {
		t.Fatal("register returned empty token")
	}
	return body.Token
}

func (e testEnv) do(t *testing.T, method, path, token string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, e.server.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestAuthRegisterMeLogout(t *testing.T) {
	env := newTestEnv(t)

	token := env.register(t, "guest@example.com")

	resp := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	var me struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	if me.Email != "guest@example.com" {
		t.Fatalf("me email = %q", me.Email)
	}

	resp = env.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout status = %d", resp.StatusCode)
	}
}

func TestAuthMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCatalogListsActiveListings(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveListing(t, "lst-1")

	resp := env.do(t, http.MethodGet, "/api/v1/listings", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("catalog status = %d", resp.StatusCode)
	}
	var catalog struct {
		Total int `json:"total"`
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if catalog.Total != 1 || len(catalog.Items) != 1 {
		t.Fatalf("catalog total = %d items = %d", catalog.Total, len(catalog.Items))
	}
	if catalog.Items[0].ID != "lst-1" {
		t.Fatalf("catalog item id = %q", catalog.Items[0].ID)
	}
}

func TestBookingCreateAndConflict(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveListing(t, "lst-book")
	token := env.register(t, "booker@example.com")

	checkIn := time.Now().AddDate(0, 0, 7).UTC().Truncate(24 * time.Hour)
	payload := map[string]any{
		"listing_id": "lst-book",
		"check_in":   checkIn.Format(time.RFC3339),
		"check_out":  checkIn.AddDate(0, 0, 3).Format(time.RFC3339),
		"guests":     2,
	}

	resp := env.do(t, http.MethodPost, "/api/v1/bookings", token, payload)
	var created struct {
		BookingID string `json:"booking_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("booking status = %d", resp.StatusCode)
	}
	if created.BookingID == "" {
		t.Fatal("booking id empty")
	}

	resp = env.do(t, http.MethodPost, "/api/v1/bookings", token, payload)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("overlapping booking status = %d, want 409", resp.StatusCode)
	}
}

func TestGuestCheckoutWithContactDetails(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveListing(t, "lst-anon")

	resp := env.do(t, http.MethodPost, "/api/v1/bookings", "", map[string]any{
		"listing_id":  "lst-anon",
		"check_in":    time.Now().AddDate(0, 0, 2).Format(time.RFC3339),
		"check_out":   time.Now().AddDate(0, 0, 4).Format(time.RFC3339),
		"guests":      1,
		"guest_name":  "Walk-in Guest",
		"guest_email": "walkin@example.com",
		"guest_phone": "+254700000000",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var out struct {
		BookingID string `json:"booking_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.BookingID == "" {
		t.Fatalf("booking_id is empty")
	}
}

func TestGuestCheckoutRequiresContactDetails(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveListing(t, "lst-anon-nc")

	resp := env.do(t, http.MethodPost, "/api/v1/bookings", "", map[string]any{
		"listing_id": "lst-anon-nc",
		"check_in":   time.Now().AddDate(0, 0, 2).Format(time.RFC3339),
		"check_out":  time.Now().AddDate(0, 0, 4).Format(time.RFC3339),
		"guests":     1,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCalendarShowsReservedRange(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveListing(t, "lst-cal")
	token := env.register(t, "caller@example.com")

	checkIn := time.Now().AddDate(0, 1, 0).UTC().Truncate(24 * time.Hour)
	resp := env.do(t, http.MethodPost, "/api/v1/bookings", token, map[string]any{
		"listing_id": "lst-cal",
		"check_in":   checkIn.Format(time.RFC3339),
		"check_out":  checkIn.AddDate(0, 0, 2).Format(time.RFC3339),
		"guests":     1,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("booking status = %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/listings/%s/calendar", "lst-cal"), "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("calendar status = %d", resp.StatusCode)
	}
	var calendar struct {
		Blocks []struct {
			BookingID string `json:"booking_id"`
		} `json:"blocks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&calendar); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if len(calendar.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(calendar.Blocks))
	}
	if calendar.Blocks[0].BookingID == "" {
		t.Fatal("calendar block missing booking id")
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/livez", "/readyz"} {
		resp := env.do(t, http.MethodGet, path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d", path, resp.StatusCode)
		}
	}
}
