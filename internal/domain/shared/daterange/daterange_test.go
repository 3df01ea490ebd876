package daterange

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvertedAndEmptyRanges(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"same day", date(2024, 2, 1), date(2024, 2, 1)},
		{"inverted", date(2024, 2, 4), date(2024, 2, 1)},
		{"zero check-in", time.Time{}, date(2024, 2, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.checkIn, tt.checkOut); !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("New() error = %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestNewIgnoresTimeOfDay(t *testing.T) {
	dr, err := New(
		time.Date(2024, 2, 1, 14, 30, 0, 0, time.UTC),
		time.Date(2024, 2, 4, 11, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if !dr.CheckIn.Equal(date(2024, 2, 1)) {
		t.Fatalf("CheckIn = %v, want midnight", dr.CheckIn)
	}
	if got := dr.Nights(); got != 3 {
		t.Fatalf("Nights() = %d, want 3", got)
	}
}

func TestNightsNonPositiveForBadRanges(t *testing.T) {
	same := DateRange{CheckIn: date(2024, 1, 10), CheckOut: date(2024, 1, 10)}
	if got := same.Nights(); got != 0 {
		t.Fatalf("Nights() = %d, want 0", got)
	}
	inverted := DateRange{CheckIn: date(2024, 1, 15), CheckOut: date(2024, 1, 10)}
	if got := inverted.Nights(); got >= 0 {
		t.Fatalf("Nights() = %d, want negative", got)
	}
}

func TestOccupiedDaysIncludesBothEndpoints(t *testing.T) {
	dr := DateRange{CheckIn: date(2024, 1, 10), CheckOut: date(2024, 1, 13)}
	days := dr.OccupiedDays()
	if len(days) != 4 {
		t.Fatalf("len(OccupiedDays()) = %d, want 4", len(days))
	}
	if !days[0].Equal(date(2024, 1, 10)) {
		t.Fatalf("first day = %v, want check-in day", days[0])
	}
	if !days[len(days)-1].Equal(date(2024, 1, 13)) {
		t.Fatalf("last day = %v, want check-out day", days[len(days)-1])
	}
}

func TestOverlaps(t *testing.T) {
	existing := DateRange{CheckIn: date(2024, 1, 10), CheckOut: date(2024, 1, 15)}
	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"inside", DateRange{CheckIn: date(2024, 1, 12), CheckOut: date(2024, 1, 14)}, true},
		{"starts on checkout day", DateRange{CheckIn: date(2024, 1, 15), CheckOut: date(2024, 1, 18)}, false},
		{"ends on checkin day", DateRange{CheckIn: date(2024, 1, 7), CheckOut: date(2024, 1, 10)}, false},
		{"spans", DateRange{CheckIn: date(2024, 1, 8), CheckOut: date(2024, 1, 20)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := existing.Overlaps(tt.other); got != tt.want {
				t.Fatalf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContainsDate(t *testing.T) {
	dr := DateRange{CheckIn: date(2024, 1, 10), CheckOut: date(2024, 1, 15)}
	if !dr.ContainsDate(date(2024, 1, 10)) {
		t.Fatalf("ContainsDate(check-in) = false, want true")
	}
	if dr.ContainsDate(date(2024, 1, 15)) {
		t.Fatalf("ContainsDate(check-out) = true, want false")
	}
}
