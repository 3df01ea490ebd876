package hosts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/calemaley/airbnb/internal/domain/shared/events"
	"github.com/calemaley/airbnb/internal/domain/shared/money"
)

var (
	ErrNameRequired         = errors.New("hosts: full name is required")
	ErrEmailRequired        = errors.New("hosts: email is required")
	ErrInvalidTier          = errors.New("hosts: unknown tier")
	ErrInvalidPaymentMethod = errors.New("hosts: unknown payment method")
	ErrRegistrationNotFound = errors.New("hosts: registration not found")
	ErrAlreadyRegistered    = errors.New("hosts: user already registered")
)

// PromoFreeHostLimit caps the launch incentive: the first hosts to activate a
// Standard listing get their first year free.
const PromoFreeHostLimit = 5

type Tier string

const (
	TierStandard Tier = "Standard"
	TierPremium  Tier = "Premium"
)

func ParseTier(raw string) (Tier, error) {
	switch Tier(strings.TrimSpace(raw)) {
	case TierStandard:
		return TierStandard, nil
	case TierPremium:
		return TierPremium, nil
	default:
		return "", ErrInvalidTier
	}
}

// AnnualFee is the yearly listing fee for a tier, in whole shillings.
func AnnualFee(tier Tier) money.Money {
	switch tier {
	case TierPremium:
		return money.KES(19900)
	default:
		return money.KES(9900)
	}
}

type PaymentMethod string

const (
	PayStripe  PaymentMethod = "stripe"
	PayPaypal  PaymentMethod = "paypal"
	PayPesapal PaymentMethod = "pesapal"
)

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(raw))) {
	case PayStripe:
		return PayStripe, nil
	case PayPaypal:
		return PayPaypal, nil
	case PayPesapal:
		return PayPesapal, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// PromoAvailable reports whether the free-first-year offer still has slots,
// given the current active host count.
func PromoAvailable(activeHosts int64) bool {
	return activeHosts < PromoFreeHostLimit
}

// AmountDue returns the registration charge. The launch promo waives the fee
// for Standard hosts while slots remain; Premium always pays.
func AmountDue(tier Tier, activeHosts int64) money.Money {
	if tier == TierStandard && PromoAvailable(activeHosts) {
		return money.KES(0)
	}
	return AnnualFee(tier)
}

// CounterRepository is the authoritative active-host counter. Implementations
// must increment atomically in the persistent store; the count is never held
// only in process memory.
type CounterRepository interface {
	ActiveHosts(ctx context.Context) (int64, error)
	IncrementActiveHosts(ctx context.Context) (int64, error)
}

type RegistrationID string

type Registration struct {
	ID            RegistrationID
	UserID        string
	FullName      string
	Email         string
	Tier          Tier
	PaymentMethod PaymentMethod
	AmountDue     money.Money
	PromoApplied  bool
	CreatedAt     time.Time
	events.EventRecorder
}

type RegistrationRepository interface {
	Save(ctx context.Context, reg *Registration) error
	ByUser(ctx context.Context, userID string) (*Registration, error)
}

type RegisterParams struct {
	ID            RegistrationID
	UserID        string
	FullName      string
	Email         string
	Tier          Tier
	PaymentMethod PaymentMethod
	ActiveHosts   int64
	Now           time.Time
}

func NewRegistration(params RegisterParams) (*Registration, error) {
	name := strings.TrimSpace(params.FullName)
	if len(name) < 3 {
		return nil, ErrNameRequired
	}
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrEmailRequired
	}
	if _, err := ParseTier(string(params.Tier)); err != nil {
		return nil, err
	}
	if _, err := ParsePaymentMethod(string(params.PaymentMethod)); err != nil {
		return nil, err
	}

	due := AmountDue(params.Tier, params.ActiveHosts)
	reg := &Registration{
		ID:            params.ID,
		UserID:        params.UserID,
		FullName:      name,
		Email:         email,
		Tier:          params.Tier,
		PaymentMethod: params.PaymentMethod,
		AmountDue:     due,
		PromoApplied:  due.IsZero(),
		CreatedAt:     params.Now.UTC(),
	}
	reg.Record(HostRegistered{
		RegistrationID: reg.ID,
		Tier:           reg.Tier,
		AmountDue:      reg.AmountDue,
		PromoApplied:   reg.PromoApplied,
		At:             reg.CreatedAt,
	})
	return reg, nil
}
