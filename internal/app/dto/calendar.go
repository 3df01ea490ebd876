package dto

import (
	"time"

	"github.com/calemaley/airbnb/internal/domain/availability"
)

type CalendarBlock struct {
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	BookingID string    `json:"booking_id,omitempty"`
}

type Calendar struct {
	ListingID     string          `json:"listing_id"`
	Blocks        []CalendarBlock `json:"blocks"`
	DisabledDates []string        `json:"disabled_dates"`
}

func MapCalendar(cal *availability.Calendar) Calendar {
	if cal == nil {
		return Calendar{DisabledDates: []string{}}
	}
	blocks := make([]CalendarBlock, 0, len(cal.Blocks))
	for _, b := range cal.Blocks {
		blocks = append(blocks, CalendarBlock{
			From:      b.Range.CheckIn,
			To:        b.Range.CheckOut,
			BookingID: string(b.BookingID),
		})
	}
	return Calendar{
		ListingID:     string(cal.ListingID),
		Blocks:        blocks,
		DisabledDates: FormatDisabledDates(cal),
	}
}
