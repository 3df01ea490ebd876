package dto

import (
	domainpricing "github.com/calemaley/airbnb/internal/domain/pricing"
)

type PriceQuote struct {
	Nights  int      `json:"nights"`
	Nightly MoneyDTO `json:"nightly"`
	Total   MoneyDTO `json:"total"`
}

func MapPriceQuote(quote domainpricing.Quote) PriceQuote {
	return PriceQuote{
		Nights:  quote.Nights,
		Nightly: MapMoney(quote.Nightly),
		Total:   MapMoney(quote.Total),
	}
}
