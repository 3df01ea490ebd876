package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/calemaley/airbnb/internal/domain/shared/events"
)

var (
	ErrIDRequired       = errors.New("listings: id is required")
	ErrHostRequired     = errors.New("listings: host is required")
	ErrNameRequired     = errors.New("listings: name is required")
	ErrLocationRequired = errors.New("listings: location is required")
	ErrInvalidCategory  = errors.New("listings: unknown category")
	ErrInvalidPriceType = errors.New("listings: unknown price type")
	ErrNightlyRate      = errors.New("listings: nightly rate must be positive")
	ErrInvalidState     = errors.New("listings: invalid state transition")
	ErrRatingRange      = errors.New("listings: rating must be between 0 and 5")
	ErrNotFound         = errors.New("listings: not found")
)

type ListingID string
type HostID string

// Category is the marketplace tier a listing is marketed under.
type Category string

const (
	CategoryBudget   Category = "Budget"
	CategoryMidRange Category = "Mid-range"
	CategoryLuxury   Category = "Luxury"
)

func ParseCategory(raw string) (Category, error) {
	switch Category(strings.TrimSpace(raw)) {
	case CategoryBudget:
		return CategoryBudget, nil
	case CategoryMidRange:
		return CategoryMidRange, nil
	case CategoryLuxury:
		return CategoryLuxury, nil
	default:
		return "", ErrInvalidCategory
	}
}

// PriceType tells guests whether the nightly rate is open to negotiation.
type PriceType string

const (
	PriceFixed      PriceType = "Fixed"
	PriceNegotiable PriceType = "Negotiable"
)

func ParsePriceType(raw string) (PriceType, error) {
	switch PriceType(strings.TrimSpace(raw)) {
	case PriceFixed:
		return PriceFixed, nil
	case PriceNegotiable:
		return PriceNegotiable, nil
	default:
		return "", ErrInvalidPriceType
	}
}

type ListingState string

const (
	ListingDraft     ListingState = "DRAFT"
	ListingActive    ListingState = "ACTIVE"
	ListingSuspended ListingState = "SUSPENDED"
)

type Listing struct {
	ID          ListingID
	Host        HostID
	HostName    string
	HostPhone   string
	Name        string
	Location    string
	Category    Category
	NightlyRate int64
	PriceType   PriceType
	Description string
	Images      []string
	Amenities   []string
	Rating      float64
	ReviewCount int
	State       ListingState
	Lat         float64
	Lng         float64
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type ListingRepository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateListingParams struct {
	ID          ListingID
	Host        HostID
	HostName    string
	HostPhone   string
	Name        string
	Location    string
	Category    Category
	NightlyRate int64
	PriceType   PriceType
	Description string
	Images      []string
	Amenities   []string
	Lat         float64
	Lng         float64
	Now         time.Time
}

func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.Location) == "" {
		return nil, ErrLocationRequired
	}
	if _, err := ParseCategory(string(params.Category)); err != nil {
		return nil, err
	}
	if _, err := ParsePriceType(string(params.PriceType)); err != nil {
		return nil, err
	}
	if params.NightlyRate <= 0 {
		return nil, ErrNightlyRate
	}

	listing := &Listing{
		ID:          params.ID,
		Host:        params.Host,
		HostName:    strings.TrimSpace(params.HostName),
		HostPhone:   strings.TrimSpace(params.HostPhone),
		Name:        strings.TrimSpace(params.Name),
		Location:    strings.TrimSpace(params.Location),
		Category:    params.Category,
		NightlyRate: params.NightlyRate,
		PriceType:   params.PriceType,
		Description: strings.TrimSpace(params.Description),
		Images:      append([]string(nil), params.Images...),
		Amenities:   append([]string(nil), params.Amenities...),
		Rating:      0,
		State:       ListingDraft,
		Lat:         params.Lat,
		Lng:         params.Lng,
		CreatedAt:   params.Now.UTC(),
		UpdatedAt:   params.Now.UTC(),
	}

	listing.Record(ListingCreatedEvent{ListingID: listing.ID, HostID: listing.Host, At: listing.CreatedAt})
	return listing, nil
}

func (l *Listing) Activate(now time.Time) error {
	if l.State == ListingActive {
		return nil
	}
	if strings.TrimSpace(l.Location) == "" {
		return ErrLocationRequired
	}
	l.State = ListingActive
	l.UpdatedAt = now.UTC()
	l.Record(ListingActivatedEvent{ListingID: l.ID, HostID: l.Host, At: l.UpdatedAt})
	return nil
}

func (l *Listing) Suspend(now time.Time, reason string) error {
	if l.State != ListingActive {
		return ErrInvalidState
	}
	l.State = ListingSuspended
	l.UpdatedAt = now.UTC()
	l.Record(ListingSuspendedEvent{ListingID: l.ID, Reason: reason, At: l.UpdatedAt})
	return nil
}

type UpdateListingParams struct {
	Name        string
	Location    string
	Category    Category
	NightlyRate int64
	PriceType   PriceType
	Description string
	Images      []string
	Amenities   []string
	Lat         float64
	Lng         float64
	Now         time.Time
}

func (l *Listing) UpdateDetails(params UpdateListingParams) error {
	if strings.TrimSpace(params.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(params.Location) == "" {
		return ErrLocationRequired
	}
	if _, err := ParseCategory(string(params.Category)); err != nil {
		return err
	}
	if _, err := ParsePriceType(string(params.PriceType)); err != nil {
		return err
	}
	if params.NightlyRate <= 0 {
		return ErrNightlyRate
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}

	l.Name = strings.TrimSpace(params.Name)
	l.Location = strings.TrimSpace(params.Location)
	l.Category = params.Category
	l.NightlyRate = params.NightlyRate
	l.PriceType = params.PriceType
	l.Description = strings.TrimSpace(params.Description)
	l.Images = append([]string(nil), params.Images...)
	l.Amenities = append([]string(nil), params.Amenities...)
	l.Lat = params.Lat
	l.Lng = params.Lng
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdatedEvent{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

// UpdateRating stores the recomputed review aggregate. The caller derives the
// mean from the full review set; the two are persisted in the same unit of work.
func (l *Listing) UpdateRating(average float64, reviewCount int, now time.Time) error {
	if average < 0 || average > 5 {
		return ErrRatingRange
	}
	l.Rating = average
	l.ReviewCount = reviewCount
	l.UpdatedAt = now.UTC()
	l.Record(ListingRatingUpdatedEvent{ListingID: l.ID, Rating: average, ReviewCount: reviewCount, At: l.UpdatedAt})
	return nil
}

// OwnedBy reports whether the given user owns this listing. Guests may not
// book their own listings.
func (l *Listing) OwnedBy(userID string) bool {
	return userID != "" && string(l.Host) == userID
}
