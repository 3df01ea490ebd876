package hosts

import (
	"context"

	"github.com/calemaley/airbnb/internal/app/dto"
	"github.com/calemaley/airbnb/internal/app/handlers/support"
	"github.com/calemaley/airbnb/internal/app/queries"
	"github.com/calemaley/airbnb/internal/app/uow"
	domainhosts "github.com/calemaley/airbnb/internal/domain/hosts"
)

const promoStatusKey = "hosts.promo.status"

type PromoStatusQuery struct{}

func (q PromoStatusQuery) Key() string { return promoStatusKey }

// PromoStatusHandler reports how many free-first-year slots remain. The
// pricing page polls this before a prospective host commits to the fee.
type PromoStatusHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *PromoStatusHandler) Handle(ctx context.Context, q PromoStatusQuery) (dto.PromoStatus, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PromoStatus{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	active, err := unit.HostCounter().ActiveHosts(ctx)
	if err != nil {
		return dto.PromoStatus{}, err
	}

	remaining := int64(domainhosts.PromoFreeHostLimit) - active
	if remaining < 0 {
		remaining = 0
	}
	return dto.PromoStatus{
		ActiveHosts:    active,
		FreeSlotsLeft:  remaining,
		PromoAvailable: domainhosts.PromoAvailable(active),
		AnnualFee:      dto.MapMoney(domainhosts.AnnualFee(domainhosts.TierStandard)),
	}, nil
}

var _ queries.Handler[PromoStatusQuery, dto.PromoStatus] = (*PromoStatusHandler)(nil)
