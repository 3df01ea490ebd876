package uow

import (
	"context"

	domainavailability "github.com/calemaley/airbnb/internal/domain/availability"
	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainhosts "github.com/calemaley/airbnb/internal/domain/hosts"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainpricing "github.com/calemaley/airbnb/internal/domain/pricing"
	domainreviews "github.com/calemaley/airbnb/internal/domain/reviews"
	domainuser "github.com/calemaley/airbnb/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlistings.ListingRepository
	Availability() domainavailability.Repository
	Booking() domainbooking.Repository
	Pricing() domainpricing.Calculator
	Reviews() domainreviews.Repository
	Users() domainuser.Repository
	HostRegistrations() domainhosts.RegistrationRepository
	HostCounter() domainhosts.CounterRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
