package listings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calemaley/airbnb/internal/app/commands"
	"github.com/calemaley/airbnb/internal/app/dto"
	"github.com/calemaley/airbnb/internal/app/outbox"
	"github.com/calemaley/airbnb/internal/app/uow"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
)

const (
	createHostListingKey  = "host.listings.create"
	updateHostListingKey  = "host.listings.update"
	publishHostListingKey = "host.listings.publish"
	suspendHostListingKey = "host.listings.suspend"
)

var (
	ErrHostRequired    = errors.New("listings: host id is required")
	ErrListingRequired = errors.New("listings: listing id is required")
	ErrListingNotOwned = errors.New("listings: listing does not belong to host")
)

type HostListingPayload struct {
	Name        string
	Location    string
	Category    string
	NightlyRate int64
	PriceType   string
	Description string
	Images      []string
	Amenities   []string
	Lat         float64
	Lng         float64
}

type CreateHostListingCommand struct {
	HostID    string
	HostName  string
	HostPhone string
	Payload   HostListingPayload
}

func (c CreateHostListingCommand) Key() string { return createHostListingKey }

func (c CreateHostListingCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return ErrHostRequired
	}
	return nil
}

type CreateHostListingHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (h *CreateHostListingHandler) Handle(ctx context.Context, cmd CreateHostListingCommand) (*dto.ListingOverview, error) {
	if strings.TrimSpace(cmd.HostID) == "" {
		return nil, ErrHostRequired
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          domainlistings.ListingID(uuid.NewString()),
		Host:        domainlistings.HostID(cmd.HostID),
		HostName:    cmd.HostName,
		HostPhone:   cmd.HostPhone,
		Name:        cmd.Payload.Name,
		Location:    cmd.Payload.Location,
		Category:    domainlistings.Category(cmd.Payload.Category),
		NightlyRate: cmd.Payload.NightlyRate,
		PriceType:   domainlistings.PriceType(cmd.Payload.PriceType),
		Description: cmd.Payload.Description,
		Images:      cmd.Payload.Images,
		Amenities:   cmd.Payload.Amenities,
		Lat:         cmd.Payload.Lat,
		Lng:         cmd.Payload.Lng,
		Now:         time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host listing created", "listing_id", listing.ID, "host_id", cmd.HostID)
	}

	result := dto.MapListingOverview(listing, nil)
	return &result, nil
}

type UpdateHostListingCommand struct {
	HostID    string
	ListingID string
	Payload   HostListingPayload
}

func (c UpdateHostListingCommand) Key() string { return updateHostListingKey }

func (c UpdateHostListingCommand) Validate() error { return validateOwned(c.HostID, c.ListingID) }

type UpdateHostListingHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (h *UpdateHostListingHandler) Handle(ctx context.Context, cmd UpdateHostListingCommand) (*dto.ListingOverview, error) {
	listing, unit, err := ownedListing(ctx, cmd.HostID, cmd.ListingID)
	if err != nil {
		return nil, err
	}

	if err := listing.UpdateDetails(domainlistings.UpdateListingParams{
		Name:        cmd.Payload.Name,
		Location:    cmd.Payload.Location,
		Category:    domainlistings.Category(cmd.Payload.Category),
		NightlyRate: cmd.Payload.NightlyRate,
		PriceType:   domainlistings.PriceType(cmd.Payload.PriceType),
		Description: cmd.Payload.Description,
		Images:      cmd.Payload.Images,
		Amenities:   cmd.Payload.Amenities,
		Lat:         cmd.Payload.Lat,
		Lng:         cmd.Payload.Lng,
		Now:         time.Now(),
	}); err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host listing updated", "listing_id", listing.ID, "host_id", cmd.HostID)
	}

	result := dto.MapListingOverview(listing, nil)
	return &result, nil
}

type PublishHostListingCommand struct {
	HostID    string
	ListingID string
}

func (c PublishHostListingCommand) Key() string { return publishHostListingKey }

func (c PublishHostListingCommand) Validate() error { return validateOwned(c.HostID, c.ListingID) }

type PublishHostListingHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (h *PublishHostListingHandler) Handle(ctx context.Context, cmd PublishHostListingCommand) (*dto.ListingOverview, error) {
	listing, unit, err := ownedListing(ctx, cmd.HostID, cmd.ListingID)
	if err != nil {
		return nil, err
	}

	if err := listing.Activate(time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host listing published", "listing_id", listing.ID, "host_id", cmd.HostID)
	}

	result := dto.MapListingOverview(listing, nil)
	return &result, nil
}

type SuspendHostListingCommand struct {
	HostID    string
	ListingID string
	Reason    string
}

func (c SuspendHostListingCommand) Key() string { return suspendHostListingKey }

func (c SuspendHostListingCommand) Validate() error { return validateOwned(c.HostID, c.ListingID) }

type SuspendHostListingHandler struct {
	Logger  *slog.Logger
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (h *SuspendHostListingHandler) Handle(ctx context.Context, cmd SuspendHostListingCommand) (*dto.ListingOverview, error) {
	listing, unit, err := ownedListing(ctx, cmd.HostID, cmd.ListingID)
	if err != nil {
		return nil, err
	}

	if err := listing.Suspend(time.Now(), cmd.Reason); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host listing suspended", "listing_id", listing.ID, "host_id", cmd.HostID)
	}

	result := dto.MapListingOverview(listing, nil)
	return &result, nil
}

func validateOwned(hostID, listingID string) error {
	if strings.TrimSpace(hostID) == "" {
		return ErrHostRequired
	}
	if strings.TrimSpace(listingID) == "" {
		return ErrListingRequired
	}
	return nil
}

func ownedListing(ctx context.Context, hostID, listingID string) (*domainlistings.Listing, uow.UnitOfWork, error) {
	if strings.TrimSpace(hostID) == "" {
		return nil, nil, ErrHostRequired
	}
	if strings.TrimSpace(listingID) == "" {
		return nil, nil, ErrListingRequired
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, nil, uow.ErrUnitOfWorkMissing
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(listingID))
	if err != nil {
		return nil, nil, err
	}
	if listing.Host != domainlistings.HostID(hostID) {
		return nil, nil, ErrListingNotOwned
	}
	return listing, unit, nil
}

func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, listing *domainlistings.Listing) error {
	pending := listing.PendingEvents()
	listing.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}

var _ commands.Handler[CreateHostListingCommand, *dto.ListingOverview] = (*CreateHostListingHandler)(nil)
var _ commands.Handler[UpdateHostListingCommand, *dto.ListingOverview] = (*UpdateHostListingHandler)(nil)
var _ commands.Handler[PublishHostListingCommand, *dto.ListingOverview] = (*PublishHostListingHandler)(nil)
var _ commands.Handler[SuspendHostListingCommand, *dto.ListingOverview] = (*SuspendHostListingHandler)(nil)
