package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: check-out must be after check-in")
)

// DateRange represents a half-open stay interval [checkIn, checkOut).
// Both endpoints are normalized to midnight UTC; time-of-day is ignored.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day truncates a timestamp to its calendar date in UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights returns the whole-day difference between check-out and check-in.
// Zero or negative for empty and inverted ranges.
func (dr DateRange) Nights() int {
	return int(Day(dr.CheckOut).Sub(Day(dr.CheckIn)) / (24 * time.Hour))
}

// OccupiedDays expands the range into its calendar days, stepping one day at a
// time. Both the check-in day and the check-out day are included.
func (dr DateRange) OccupiedDays() []time.Time {
	start := Day(dr.CheckIn)
	end := Day(dr.CheckOut)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, dr.Nights()+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.CheckIn) && t.Before(dr.CheckOut)
}
