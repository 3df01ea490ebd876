package dto

import (
	"time"

	domainhosts "github.com/calemaley/airbnb/internal/domain/hosts"
)

type HostRegistration struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Tier          string    `json:"tier"`
	PaymentMethod string    `json:"payment_method"`
	AmountDue     MoneyDTO  `json:"amount_due"`
	PromoApplied  bool      `json:"promo_applied"`
	CreatedAt     time.Time `json:"created_at"`
}

type PromoStatus struct {
	ActiveHosts    int64    `json:"active_hosts"`
	FreeSlotsLeft  int64    `json:"free_slots_left"`
	PromoAvailable bool     `json:"promo_available"`
	AnnualFee      MoneyDTO `json:"annual_fee"`
}

func MapHostRegistration(reg *domainhosts.Registration) HostRegistration {
	if reg == nil {
		return HostRegistration{}
	}
	return HostRegistration{
		ID:            string(reg.ID),
		FullName:      reg.FullName,
		Email:         reg.Email,
		Tier:          string(reg.Tier),
		PaymentMethod: string(reg.PaymentMethod),
		AmountDue:     MapMoney(reg.AmountDue),
		PromoApplied:  reg.PromoApplied,
		CreatedAt:     reg.CreatedAt,
	}
}
