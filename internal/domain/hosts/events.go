package hosts

import (
	"time"

	"github.com/calemaley/airbnb/internal/domain/shared/money"
)

type HostRegistered struct {
	RegistrationID RegistrationID `json:"registration_id"`
	Tier           Tier           `json:"tier"`
	AmountDue      money.Money    `json:"amount_due"`
	PromoApplied   bool           `json:"promo_applied"`
	At             time.Time      `json:"at"`
}

func (e HostRegistered) EventName() string     { return "hosts.registered" }
func (e HostRegistered) AggregateID() string   { return string(e.RegistrationID) }
func (e HostRegistered) OccurredAt() time.Time { return e.At }
