package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/calemaley/airbnb/internal/domain/shared/daterange"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, checkIn, checkOut time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		t.Fatalf("daterange.New() unexpected error: %v", err)
	}
	return dr
}

func bookedCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal := NewCalendar("lst-1")
	if err := cal.Reserve(mustRange(t, date(2024, 1, 10), date(2024, 1, 15)), "bkg-1", date(2024, 1, 1)); err != nil {
		t.Fatalf("Reserve() unexpected error: %v", err)
	}
	return cal
}

func TestValidateReasons(t *testing.T) {
	cal := bookedCalendar(t)
	now := date(2024, 1, 2)

	tests := []struct {
		name    string
		r       daterange.DateRange
		wantErr error
	}{
		{
			"overlap inside existing booking",
			mustRange(t, date(2024, 1, 12), date(2024, 1, 14)),
			ErrOverlappingRange,
		},
		{
			"checkout day of existing booking is free",
			mustRange(t, date(2024, 1, 15), date(2024, 1, 18)),
			nil,
		},
		{
			"past check-in",
			mustRange(t, date(2024, 1, 1), date(2024, 1, 3)),
			ErrPastCheckIn,
		},
		{
			"zero nights",
			daterange.DateRange{CheckIn: date(2024, 1, 20), CheckOut: date(2024, 1, 20)},
			ErrZeroNights,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cal.Validate(tt.r, now)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReserveRejectsOverlapOnWritePath(t *testing.T) {
	cal := bookedCalendar(t)
	err := cal.Reserve(mustRange(t, date(2024, 1, 14), date(2024, 1, 16)), "bkg-2", date(2024, 1, 2))
	if !errors.Is(err, ErrOverlappingRange) {
		t.Fatalf("Reserve() error = %v, want ErrOverlappingRange", err)
	}
	if len(cal.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1 after rejected reserve", len(cal.Blocks))
	}

	found := false
	for _, ev := range cal.PendingEvents() {
		if ev.EventName() == "availability.overbooking_prevented" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected overbooking_prevented event after rejected reserve")
	}
}

func TestDisabledDatesUnionAndIdempotence(t *testing.T) {
	cal := bookedCalendar(t)
	if err := cal.Reserve(mustRange(t, date(2024, 1, 20), date(2024, 1, 22)), "bkg-3", date(2024, 1, 2)); err != nil {
		t.Fatalf("Reserve() unexpected error: %v", err)
	}

	first := cal.DisabledDates()
	second := cal.DisabledDates()
	if len(first) != len(second) {
		t.Fatalf("DisabledDates() lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("DisabledDates() not idempotent at %d: %v vs %v", i, first[i], second[i])
		}
	}

	// [10,15] inclusive plus [20,22] inclusive: 6 + 3 days.
	if len(first) != 9 {
		t.Fatalf("len(DisabledDates()) = %d, want 9", len(first))
	}
	if !first[0].Equal(date(2024, 1, 10)) || !first[len(first)-1].Equal(date(2024, 1, 22)) {
		t.Fatalf("DisabledDates() bounds = %v..%v, want 10..22 Jan", first[0], first[len(first)-1])
	}
}

func TestDisabledDatesDeduplicatesSharedDays(t *testing.T) {
	cal := NewCalendar("lst-1")
	if err := cal.Reserve(mustRange(t, date(2024, 3, 1), date(2024, 3, 4)), "bkg-1", date(2024, 2, 1)); err != nil {
		t.Fatalf("Reserve() unexpected error: %v", err)
	}
	// Back-to-back stay: its check-in day equals the prior check-out day.
	if err := cal.Reserve(mustRange(t, date(2024, 3, 4), date(2024, 3, 6)), "bkg-2", date(2024, 2, 1)); err != nil {
		t.Fatalf("Reserve() unexpected error: %v", err)
	}
	days := cal.DisabledDates()
	// 1..4 inclusive plus 4..6 inclusive, March 4 counted once.
	if len(days) != 6 {
		t.Fatalf("len(DisabledDates()) = %d, want 6", len(days))
	}
}
