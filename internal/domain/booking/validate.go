package booking

import (
	"errors"
	"time"

	"github.com/calemaley/airbnb/internal/domain/shared/daterange"
)

var ErrCheckInInPast = errors.New("booking: check-in date is in the past")

// ValidateDateRange rejects retroactive bookings: the check-in day must not be
// before today.
func ValidateDateRange(dr daterange.DateRange, now time.Time) error {
	if daterange.Day(dr.CheckIn).Before(daterange.Day(now)) {
		return ErrCheckInInPast
	}
	return nil
}
