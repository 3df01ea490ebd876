package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/calemaley/airbnb/internal/app/uow"
	domainavailability "github.com/calemaley/airbnb/internal/domain/availability"
	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainhosts "github.com/calemaley/airbnb/internal/domain/hosts"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainpricing "github.com/calemaley/airbnb/internal/domain/pricing"
	domainreviews "github.com/calemaley/airbnb/internal/domain/reviews"
	domainuser "github.com/calemaley/airbnb/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ListingsRepo     domainlistings.ListingRepository
	AvailabilityRepo domainavailability.Repository
	BookingRepo      domainbooking.Repository
	PricingSvc       domainpricing.Calculator
	ReviewsRepo      domainreviews.Repository
	UsersRepo        domainuser.Repository
	HostRegsRepo     domainhosts.RegistrationRepository
	HostCounterRepo  domainhosts.CounterRepository
}

// NewFactory builds a factory with collection-backed repositories over db.
func NewFactory(db *mongo.Database, pricingSvc domainpricing.Calculator) *Factory {
	return &Factory{
		DB:               db,
		ListingsRepo:     NewListingRepository(db),
		AvailabilityRepo: NewAvailabilityRepository(db),
		BookingRepo:      NewBookingRepository(db),
		PricingSvc:       pricingSvc,
		ReviewsRepo:      NewReviewRepository(db),
		UsersRepo:        NewUserRepository(db),
		HostRegsRepo:     NewHostRegistrationRepository(db),
		HostCounterRepo:  NewHostCounterStore(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:           f.DB,
		session:      session,
		listings:     f.ListingsRepo,
		availability: f.AvailabilityRepo,
		booking:      f.BookingRepo,
		pricing:      f.PricingSvc,
		reviews:      f.ReviewsRepo,
		users:        f.UsersRepo,
		hostRegs:     f.HostRegsRepo,
		hostCounter:  f.HostCounterRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

	listings     domainlistings.ListingRepository
	availability domainavailability.Repository
	booking      domainbooking.Repository
	pricing      domainpricing.Calculator
	reviews      domainreviews.Repository
	users        domainuser.Repository
	hostRegs     domainhosts.RegistrationRepository
	hostCounter  domainhosts.CounterRepository
}

func (u *Unit) Listings() domainlistings.ListingRepository {
	return u.listings
}

func (u *Unit) Availability() domainavailability.Repository {
	return u.availability
}

func (u *Unit) Booking() domainbooking.Repository {
	return u.booking
}

func (u *Unit) Pricing() domainpricing.Calculator {
	return u.pricing
}

func (u *Unit) Reviews() domainreviews.Repository {
	return u.reviews
}

func (u *Unit) Users() domainuser.Repository {
	return u.users
}

func (u *Unit) HostRegistrations() domainhosts.RegistrationRepository {
	return u.hostRegs
}

func (u *Unit) HostCounter() domainhosts.CounterRepository {
	return u.hostCounter
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session visible to downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
