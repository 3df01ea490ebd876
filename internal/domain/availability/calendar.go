package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/calemaley/airbnb/internal/domain/booking"
	"github.com/calemaley/airbnb/internal/domain/listings"
	"github.com/calemaley/airbnb/internal/domain/shared/daterange"
	"github.com/calemaley/airbnb/internal/domain/shared/events"
)

var (
	ErrOverlappingRange = errors.New("availability: range overlaps an existing booking")
	ErrZeroNights       = errors.New("availability: range has no nights")
	ErrPastCheckIn      = errors.New("availability: check-in date is in the past")
)

// Block marks the days one confirmed booking occupies on a listing calendar.
type Block struct {
	Range     daterange.DateRange
	BookingID booking.BookingID
	CreatedAt time.Time
}

// Calendar is the booked state of one listing, loaded in full before any
// availability decision. All operations are pure over the loaded blocks.
type Calendar struct {
	ListingID listings.ListingID
	Blocks    []Block
	Version   int64
	events.EventRecorder
}

type Repository interface {
	Calendar(ctx context.Context, id listings.ListingID) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
}

func NewCalendar(id listings.ListingID) *Calendar {
	return &Calendar{ListingID: id}
}

// DisabledDates returns the union of every block's occupied-day set: the
// calendar dates a date picker must mark unavailable. Deterministic for a
// given calendar state.
func (c *Calendar) DisabledDates() []time.Time {
	seen := make(map[time.Time]struct{})
	var out []time.Time
	for _, block := range c.Blocks {
		for _, day := range block.Range.OccupiedDays() {
			if _, ok := seen[day]; ok {
				continue
			}
			seen[day] = struct{}{}
			out = append(out, day)
		}
	}
	sortDates(out)
	return out
}

// Validate checks a proposed stay against the booked state: the range must
// span at least one night, start today or later, and touch no booked day.
func (c *Calendar) Validate(r daterange.DateRange, now time.Time) error {
	if r.Nights() <= 0 {
		return ErrZeroNights
	}
	if daterange.Day(r.CheckIn).Before(daterange.Day(now)) {
		return ErrPastCheckIn
	}
	if !c.canReserve(r) {
		return ErrOverlappingRange
	}
	return nil
}

// Reserve blocks the range for a booking. This is the write-path overlap
// check: it runs inside the booking transaction so two concurrent submissions
// for the same days cannot both commit.
func (c *Calendar) Reserve(r daterange.DateRange, bookingID booking.BookingID, now time.Time) error {
	if err := c.Validate(r, now); err != nil {
		if errors.Is(err, ErrOverlappingRange) {
			c.Record(OverbookingPrevented{ListingID: c.ListingID, Range: r, At: now.UTC()})
		}
		return err
	}
	c.Blocks = append(c.Blocks, Block{Range: r, BookingID: bookingID, CreatedAt: now.UTC()})
	c.Record(CalendarBlocked{ListingID: c.ListingID, BookingID: bookingID, Range: r, At: now.UTC()})
	return nil
}

func (c *Calendar) canReserve(r daterange.DateRange) bool {
	for _, block := range c.Blocks {
		if block.Range.Overlaps(r) {
			return false
		}
	}
	return true
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
