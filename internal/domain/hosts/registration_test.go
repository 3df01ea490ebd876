package hosts

import (
	"errors"
	"testing"
	"time"
)

func validParams() RegisterParams {
	return RegisterParams{
		ID:            "reg-1",
		UserID:        "user-1",
		FullName:      "Achieng Otieno",
		Email:         "achieng@example.com",
		Tier:          TierStandard,
		PaymentMethod: PayPesapal,
		ActiveHosts:   12,
		Now:           time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewRegistrationValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RegisterParams)
		want   error
	}{
		{"short name", func(p *RegisterParams) { p.FullName = "Al" }, ErrNameRequired},
		{"blank email", func(p *RegisterParams) { p.Email = "  " }, ErrEmailRequired},
		{"malformed email", func(p *RegisterParams) { p.Email = "not-an-email" }, ErrEmailRequired},
		{"unknown tier", func(p *RegisterParams) { p.Tier = "Gold" }, ErrInvalidTier},
		{"unknown payment method", func(p *RegisterParams) { p.PaymentMethod = "mpesa-direct" }, ErrInvalidPaymentMethod},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)
			if _, err := NewRegistration(params); !errors.Is(err, tc.want) {
				t.Fatalf("NewRegistration() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPromoWaivesStandardFee(t *testing.T) {
	params := validParams()
	params.ActiveHosts = 3

	reg, err := NewRegistration(params)
	if err != nil {
		t.Fatalf("NewRegistration() error = %v", err)
	}
	if !reg.AmountDue.IsZero() {
		t.Fatalf("AmountDue = %v, want zero during promo", reg.AmountDue)
	}
	if !reg.PromoApplied {
		t.Fatal("PromoApplied = false, want true")
	}
}

func TestPromoExhausted(t *testing.T) {
	params := validParams()
	params.ActiveHosts = PromoFreeHostLimit

	reg, err := NewRegistration(params)
	if err != nil {
		t.Fatalf("NewRegistration() error = %v", err)
	}
	if reg.AmountDue.Amount != 9900 {
		t.Fatalf("AmountDue = %d, want 9900 once promo slots are gone", reg.AmountDue.Amount)
	}
	if reg.PromoApplied {
		t.Fatal("PromoApplied = true, want false")
	}
}

func TestPremiumNeverDiscounted(t *testing.T) {
	params := validParams()
	params.Tier = TierPremium
	params.ActiveHosts = 0

	reg, err := NewRegistration(params)
	if err != nil {
		t.Fatalf("NewRegistration() error = %v", err)
	}
	if reg.AmountDue.Amount != 19900 {
		t.Fatalf("AmountDue = %d, want 19900 for premium", reg.AmountDue.Amount)
	}
	if reg.PromoApplied {
		t.Fatal("PromoApplied = true, want false for premium")
	}
}

func TestRegistrationNormalizesAndRecords(t *testing.T) {
	params := validParams()
	params.FullName = "  Achieng Otieno  "
	params.Email = "Achieng@Example.com"

	reg, err := NewRegistration(params)
	if err != nil {
		t.Fatalf("NewRegistration() error = %v", err)
	}
	if reg.FullName != "Achieng Otieno" {
		t.Fatalf("FullName = %q", reg.FullName)
	}
	if reg.Email != "achieng@example.com" {
		t.Fatalf("Email = %q", reg.Email)
	}
	pending := reg.PendingEvents()
	if len(pending) != 1 || pending[0].EventName() != "hosts.registered" {
		t.Fatalf("pending events = %v, want single hosts.registered", pending)
	}
}
