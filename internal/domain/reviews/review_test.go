package reviews

import (
	"errors"
	"testing"
	"time"
)

func TestValidRating(t *testing.T) {
	valid := []float64{1, 1.5, 2, 3.5, 4, 4.5, 5}
	for _, r := range valid {
		if !ValidRating(r) {
			t.Fatalf("ValidRating(%v) = false, want true", r)
		}
	}
	invalid := []float64{0, 0.5, 5.5, 3.2, -1, 4.25}
	for _, r := range invalid {
		if ValidRating(r) {
			t.Fatalf("ValidRating(%v) = true, want false", r)
		}
	}
}

func TestSubmit(t *testing.T) {
	review, err := Submit(SubmitParams{
		ID:         "rev-1",
		ListingID:  "lst-1",
		BookingID:  "bkg-1",
		AuthorID:   "guest-1",
		AuthorName: " Amina ",
		Rating:     4.5,
		Comment:    "  Lovely stay.  ",
		CreatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}
	if review.AuthorName != "Amina" || review.Comment != "Lovely stay." {
		t.Fatalf("Submit() did not trim fields: %q %q", review.AuthorName, review.Comment)
	}
	evs := review.PendingEvents()
	if len(evs) != 1 || evs[0].EventName() != "reviews.submitted" {
		t.Fatalf("PendingEvents() = %v, want single reviews.submitted", evs)
	}
}

func TestSubmitRejectsBadRating(t *testing.T) {
	_, err := Submit(SubmitParams{ID: "rev-1", AuthorID: "guest-1", Rating: 0})
	if !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("Submit() error = %v, want ErrInvalidRating", err)
	}
}

func TestMeanRating(t *testing.T) {
	if got := MeanRating(nil); got != 0 {
		t.Fatalf("MeanRating(nil) = %v, want 0", got)
	}
	rs := []*Review{{Rating: 5}, {Rating: 4}}
	if got := MeanRating(rs); got != 4.5 {
		t.Fatalf("MeanRating([5 4]) = %v, want 4.5", got)
	}
	rs = append(rs, &Review{Rating: 3})
	if got := MeanRating(rs); got != 4.0 {
		t.Fatalf("MeanRating([5 4 3]) = %v, want 4.0", got)
	}
}
