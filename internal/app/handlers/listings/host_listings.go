package listings

import (
	"context"
	"strings"

	"github.com/calemaley/airbnb/internal/app/dto"
	"github.com/calemaley/airbnb/internal/app/handlers/support"
	"github.com/calemaley/airbnb/internal/app/queries"
	"github.com/calemaley/airbnb/internal/app/uow"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
)

const hostListingsKey = "host.listings.list"

// HostListingsQuery returns every listing a host owns, drafts included.
type HostListingsQuery struct {
	HostID string
	Limit  int
	Offset int
}

func (q HostListingsQuery) Key() string { return hostListingsKey }

type HostListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *HostListingsHandler) Handle(ctx context.Context, q HostListingsQuery) (dto.ListingCatalog, error) {
	if strings.TrimSpace(q.HostID) == "" {
		return dto.ListingCatalog{}, ErrHostRequired
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	searchParams := domainlistings.SearchParams{
		Host:   domainlistings.HostID(q.HostID),
		Sort:   domainlistings.SortByNewest,
		Limit:  q.Limit,
		Offset: q.Offset,
	}.Normalized()

	result, err := unit.Listings().Search(ctx, searchParams)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	return dto.MapCatalog(result, searchParams), nil
}

var _ queries.Handler[HostListingsQuery, dto.ListingCatalog] = (*HostListingsHandler)(nil)
