package listings

import (
	"strings"
)

// CatalogSort defines a supported ordering.
type CatalogSort string

const (
	SortByPriceAsc  CatalogSort = "price_asc"
	SortByPriceDesc CatalogSort = "price_desc"
	SortByRating    CatalogSort = "rating_desc"
	SortByNewest    CatalogSort = "newest"

	defaultSearchLimit = 24
	maxSearchLimit     = 60
)

// SearchParams describe catalog filters and paging options.
type SearchParams struct {
	Host          HostID
	States        []ListingState
	LocationQuery string
	Categories    []Category
	Amenities     []string
	PriceMin      int64
	PriceMax      int64
	MinRating     float64
	Sort          CatalogSort
	Limit         int
	Offset        int
	OnlyActive    bool
}

// SearchResult carries one catalog page and the unpaged total.
type SearchResult struct {
	Items []*Listing
	Total int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.LocationQuery = strings.TrimSpace(strings.ToLower(normalized.LocationQuery))
	normalized.Amenities = normalizeTokens(normalized.Amenities)
	normalized.Categories = normalizeCategories(normalized.Categories)
	if normalized.PriceMin < 0 {
		normalized.PriceMin = 0
	}
	if normalized.PriceMax < 0 {
		normalized.PriceMax = 0
	}
	if normalized.MinRating < 0 {
		normalized.MinRating = 0
	}
	if normalized.MinRating > 5 {
		normalized.MinRating = 5
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	switch normalized.Sort {
	case SortByPriceAsc, SortByPriceDesc, SortByRating, SortByNewest:
	default:
		normalized.Sort = SortByPriceAsc
	}
	return normalized
}

func normalizeTokens(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(strings.ToLower(value))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeCategories(values []Category) []Category {
	if len(values) == 0 {
		return nil
	}
	out := make([]Category, 0, len(values))
	for _, value := range values {
		parsed, err := ParseCategory(string(value))
		if err != nil {
			continue
		}
		out = append(out, parsed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
