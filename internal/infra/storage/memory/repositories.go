package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainavailability "github.com/calemaley/airbnb/internal/domain/availability"
	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainreviews "github.com/calemaley/airbnb/internal/domain/reviews"
)

// ListingRepository is an in-memory implementation backing tests and the
// local development profile.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

// NewListingRepository builds an empty repository.
func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

// ByID returns a listing or listings.ErrNotFound.
func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return listing, nil
}

// Save stores/updates a listing entry.
func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing.Version++
	r.items[listing.ID] = listing
	return nil
}

// Search returns listings that satisfy provided filters.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return domainlistings.SearchResult{}, ctx.Err()
			default:
			}
		}

		if opts.OnlyActive && listing.State != domainlistings.ListingActive {
			continue
		}
		if opts.Host != "" && listing.Host != opts.Host {
			continue
		}
		if len(opts.States) > 0 && !stateIncluded(listing.State, opts.States) {
			continue
		}
		if opts.LocationQuery != "" && !matchLocation(listing, opts.LocationQuery) {
			continue
		}
		if len(opts.Categories) > 0 && !categoryIncluded(listing.Category, opts.Categories) {
			continue
		}
		if opts.PriceMin > 0 && listing.NightlyRate < opts.PriceMin {
			continue
		}
		if opts.PriceMax > 0 && listing.NightlyRate > opts.PriceMax {
			continue
		}
		if opts.MinRating > 0 && listing.Rating < opts.MinRating {
			continue
		}
		if !tokensMatch(listing.Amenities, opts.Amenities) {
			continue
		}
		matches = append(matches, listing)
	}

	sort.Slice(matches, func(i, j int) bool {
		switch opts.Sort {
		case domainlistings.SortByPriceDesc:
			if matches[i].NightlyRate == matches[j].NightlyRate {
				return matches[i].Rating > matches[j].Rating
			}
			return matches[i].NightlyRate > matches[j].NightlyRate
		case domainlistings.SortByRating:
			if matches[i].Rating == matches[j].Rating {
				return matches[i].NightlyRate < matches[j].NightlyRate
			}
			return matches[i].Rating > matches[j].Rating
		case domainlistings.SortByNewest:
			if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
				return matches[i].NightlyRate < matches[j].NightlyRate
			}
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		default:
			if matches[i].NightlyRate == matches[j].NightlyRate {
				return matches[i].Rating > matches[j].Rating
			}
			return matches[i].NightlyRate < matches[j].NightlyRate
		}
	})

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return domainlistings.SearchResult{
		Items: matches[start:end],
		Total: total,
	}, nil
}

func tokensMatch(values []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(values) == 0 {
		return false
	}
	index := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(strings.ToLower(value))
		if value == "" {
			continue
		}
		index[value] = struct{}{}
	}
	for _, token := range required {
		if _, ok := index[token]; !ok {
			return false
		}
	}
	return true
}

func matchLocation(listing *domainlistings.Listing, needle string) bool {
	if listing == nil {
		return false
	}
	full := strings.ToLower(listing.Location + " " + listing.Name)
	return strings.Contains(full, needle)
}

func categoryIncluded(category domainlistings.Category, allowed []domainlistings.Category) bool {
	for _, candidate := range allowed {
		if category == candidate {
			return true
		}
	}
	return false
}

func stateIncluded(state domainlistings.ListingState, allowed []domainlistings.ListingState) bool {
	for _, candidate := range allowed {
		if state == candidate {
			return true
		}
	}
	return false
}

// AvailabilityRepository keeps listing calendars in memory.
type AvailabilityRepository struct {
	mu        sync.RWMutex
	calendars map[domainlistings.ListingID]*domainavailability.Calendar
}

// NewAvailabilityRepository returns a repository initialized with empty calendars.
func NewAvailabilityRepository() *AvailabilityRepository {
	return &AvailabilityRepository{
		calendars: make(map[domainlistings.ListingID]*domainavailability.Calendar),
	}
}

// Calendar retrieves a listing calendar, lazily creating it.
func (r *AvailabilityRepository) Calendar(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cal, ok := r.calendars[id]; ok {
		return cal, nil
	}
	cal := domainavailability.NewCalendar(id)
	r.calendars[id] = cal
	return cal, nil
}

// Save persists a calendar snapshot.
func (r *AvailabilityRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	calendar.Version++
	r.calendars[calendar.ListingID] = calendar
	return nil
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

// ByID fetches a booking.
func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return booking, nil
}

// Save stores the current booking state.
func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.Version++
	r.items[booking.ID] = booking
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id := strings.TrimSpace(guestID)
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.GuestID == id {
			matches = append(matches, booking)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.ListingID == listingID {
			matches = append(matches, booking)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// ReviewRepository is a lightweight in-memory review store.
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[string]*domainreviews.Review
}

// NewReviewRepository builds an empty review store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[string]*domainreviews.Review)}
}

// ByListingAndAuthor locates the single review a guest may leave per listing.
func (r *ReviewRepository) ByListingAndAuthor(ctx context.Context, listingID domainlistings.ListingID, authorID string) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if review, ok := r.items[reviewKey(listingID, authorID)]; ok {
		return review, nil
	}
	return nil, domainreviews.ErrNotFound
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID, limit, offset int) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if review.ListingID == listingID {
			matches = append(matches, review)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if offset < 0 {
		offset = 0
	}
	if offset > len(matches) {
		offset = len(matches)
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

// Save writes the review entry.
func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[reviewKey(review.ListingID, review.AuthorID)] = review
	return nil
}

func reviewKey(listingID domainlistings.ListingID, authorID string) string {
	return string(listingID) + ":" + authorID
}
