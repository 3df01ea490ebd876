package policies

import (
	"context"
	"errors"

	"github.com/calemaley/airbnb/internal/domain/shared/money"
)

var (
	ErrPaymentNotCaptured = errors.New("payments: charge not captured")
	ErrAmountMismatch     = errors.New("payments: captured amount does not match quote")
)

// Verification is the provider's view of a charge, fetched server side.
// Client-reported payment state is never trusted.
type Verification struct {
	Reference string
	Captured  bool
	Amount    money.Money
	Channel   string
}

type PaymentsPort interface {
	Verify(ctx context.Context, reference string) (Verification, error)
	Refund(ctx context.Context, reference string, amount money.Money) error
}
