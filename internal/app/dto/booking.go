package dto

import (
	"time"

	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	"github.com/calemaley/airbnb/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type BookingListingSnapshot struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	Category     string `json:"category"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type GuestBookingSummary struct {
	ID              string                 `json:"id"`
	Listing         BookingListingSnapshot `json:"listing"`
	CheckIn         time.Time              `json:"check_in"`
	CheckOut        time.Time              `json:"check_out"`
	Nights          int                    `json:"nights"`
	Guests          int                    `json:"guests"`
	Status          string                 `json:"status"`
	Total           MoneyDTO               `json:"total"`
	CreatedAt       time.Time              `json:"created_at"`
	ReviewSubmitted bool                   `json:"review_submitted"`
	CanReview       bool                   `json:"can_review"`
}

type GuestBookingCollection struct {
	Items []GuestBookingSummary `json:"items"`
}

type HostBookingSummary struct {
	ID        string                 `json:"id"`
	Listing   BookingListingSnapshot `json:"listing"`
	GuestID   string                 `json:"guest_id"`
	GuestName string                 `json:"guest_name,omitempty"`
	CheckIn   time.Time              `json:"check_in"`
	CheckOut  time.Time              `json:"check_out"`
	Nights    int                    `json:"nights"`
	Guests    int                    `json:"guests"`
	Status    string                 `json:"status"`
	Total     MoneyDTO               `json:"total"`
	CreatedAt time.Time              `json:"created_at"`
}

type HostBookingCollection struct {
	Items []HostBookingSummary `json:"items"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
	}
}

func mapListingSnapshot(listingID domainlistings.ListingID, listing *domainlistings.Listing) BookingListingSnapshot {
	snapshot := BookingListingSnapshot{ID: string(listingID)}
	if listing != nil {
		snapshot.Name = listing.Name
		snapshot.Location = listing.Location
		snapshot.Category = string(listing.Category)
		if len(listing.Images) > 0 {
			snapshot.ThumbnailURL = listing.Images[0]
		}
	}
	return snapshot
}

func MapGuestBookingSummary(
	booking *domainbooking.Booking,
	listing *domainlistings.Listing,
	reviewSubmitted bool,
	canReview bool,
) GuestBookingSummary {
	return GuestBookingSummary{
		ID:              string(booking.ID),
		Listing:         mapListingSnapshot(booking.ListingID, listing),
		CheckIn:         booking.Range.CheckIn,
		CheckOut:        booking.Range.CheckOut,
		Nights:          booking.Range.Nights(),
		Guests:          booking.Guests,
		Status:          string(booking.State),
		Total:           MapMoney(booking.Price.Total),
		CreatedAt:       booking.CreatedAt,
		ReviewSubmitted: reviewSubmitted,
		CanReview:       canReview,
	}
}

func MapHostBookingSummary(booking *domainbooking.Booking, listing *domainlistings.Listing, guestName string) HostBookingSummary {
	return HostBookingSummary{
		ID:        string(booking.ID),
		Listing:   mapListingSnapshot(booking.ListingID, listing),
		GuestID:   booking.GuestID,
		GuestName: guestName,
		CheckIn:   booking.Range.CheckIn,
		CheckOut:  booking.Range.CheckOut,
		Nights:    booking.Range.Nights(),
		Guests:    booking.Guests,
		Status:    string(booking.State),
		Total:     MapMoney(booking.Price.Total),
		CreatedAt: booking.CreatedAt,
	}
}
