package listings

import (
	"context"

	"github.com/calemaley/airbnb/internal/app/dto"
	"github.com/calemaley/airbnb/internal/app/handlers/support"
	"github.com/calemaley/airbnb/internal/app/queries"
	"github.com/calemaley/airbnb/internal/app/uow"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
)

const searchCatalogKey = "listings.catalog"

// SearchCatalogQuery describes request filters.
type SearchCatalogQuery struct {
	Location   string
	Categories []string
	Amenities  []string
	PriceMin   int64
	PriceMax   int64
	MinRating  float64
	Sort       string
	Limit      int
	Offset     int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

// SearchCatalogHandler loads active listings with applied filters.
type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.ListingCatalog, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	categories := make([]domainlistings.Category, 0, len(q.Categories))
	for _, raw := range q.Categories {
		categories = append(categories, domainlistings.Category(raw))
	}

	searchParams := domainlistings.SearchParams{
		LocationQuery: q.Location,
		Categories:    categories,
		Amenities:     append([]string(nil), q.Amenities...),
		PriceMin:      q.PriceMin,
		PriceMax:      q.PriceMax,
		MinRating:     q.MinRating,
		Sort:          domainlistings.CatalogSort(q.Sort),
		Limit:         q.Limit,
		Offset:        q.Offset,
		OnlyActive:    true,
	}.Normalized()

	result, err := unit.Listings().Search(ctx, searchParams)
	if err != nil {
		return dto.ListingCatalog{}, err
	}

	return dto.MapCatalog(result, searchParams), nil
}

var _ queries.Handler[SearchCatalogQuery, dto.ListingCatalog] = (*SearchCatalogHandler)(nil)
