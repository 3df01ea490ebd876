package memory

import (
	"context"
	"errors"

	"github.com/calemaley/airbnb/internal/app/uow"
	domainavailability "github.com/calemaley/airbnb/internal/domain/availability"
	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainhosts "github.com/calemaley/airbnb/internal/domain/hosts"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainpricing "github.com/calemaley/airbnb/internal/domain/pricing"
	domainreviews "github.com/calemaley/airbnb/internal/domain/reviews"
	domainuser "github.com/calemaley/airbnb/internal/domain/user"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingsRepo     domainlistings.ListingRepository
	AvailabilityRepo domainavailability.Repository
	BookingRepo      domainbooking.Repository
	PricingSvc       domainpricing.Calculator
	ReviewsRepo      domainreviews.Repository
	UsersRepo        domainuser.Repository
	HostRegsRepo     domainhosts.RegistrationRepository
	HostCounterRepo  domainhosts.CounterRepository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// NewFactory builds a factory with a full set of fresh in-memory stores.
func NewFactory() Factory {
	return Factory{
		ListingsRepo:     NewListingRepository(),
		AvailabilityRepo: NewAvailabilityRepository(),
		BookingRepo:      NewBookingRepository(),
		PricingSvc:       domainpricing.NightlyRateCalculator{},
		ReviewsRepo:      NewReviewRepository(),
		UsersRepo:        NewUserRepository(),
		HostRegsRepo:     NewHostRegistrationRepository(),
		HostCounterRepo:  NewHostCounter(),
	}
}

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.AvailabilityRepo == nil || f.BookingRepo == nil || f.ReviewsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	factory Factory
}

func (u *Unit) Listings() domainlistings.ListingRepository {
	return u.factory.ListingsRepo
}

func (u *Unit) Availability() domainavailability.Repository {
	return u.factory.AvailabilityRepo
}

func (u *Unit) Booking() domainbooking.Repository {
	return u.factory.BookingRepo
}

func (u *Unit) Pricing() domainpricing.Calculator {
	return u.factory.PricingSvc
}

func (u *Unit) Reviews() domainreviews.Repository {
	return u.factory.ReviewsRepo
}

func (u *Unit) Users() domainuser.Repository {
	return u.factory.UsersRepo
}

func (u *Unit) HostRegistrations() domainhosts.RegistrationRepository {
	return u.factory.HostRegsRepo
}

func (u *Unit) HostCounter() domainhosts.CounterRepository {
	return u.factory.HostCounterRepo
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
