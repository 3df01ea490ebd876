package hosts

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calemaley/airbnb/internal/app/commands"
	"github.com/calemaley/airbnb/internal/app/dto"
	"github.com/calemaley/airbnb/internal/app/middleware"
	"github.com/calemaley/airbnb/internal/app/outbox"
	"github.com/calemaley/airbnb/internal/app/policies"
	"github.com/calemaley/airbnb/internal/app/uow"
	domainhosts "github.com/calemaley/airbnb/internal/domain/hosts"
	domainuser "github.com/calemaley/airbnb/internal/domain/user"
)

const registerHostKey = "hosts.register"

type RegisterHostCommand struct {
	UserID          string
	FullName        string
	Email           string
	Tier            string
	PaymentMethod   string
	PaymentRef      string
	IdempotencyKeyV string
}

func (c RegisterHostCommand) Key() string { return registerHostKey }

func (c RegisterHostCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RegisterHostCommand) ResultPrototype() any { return &dto.HostRegistration{} }

func (c RegisterHostCommand) Validate() error {
	if strings.TrimSpace(c.FullName) == "" {
		return domainhosts.ErrNameRequired
	}
	if strings.TrimSpace(c.Email) == "" {
		return domainhosts.ErrEmailRequired
	}
	return nil
}

// RegisterHostHandler signs a user up as a host. The promo decision reads,
// and on success increments, the persistent active-host counter; the count
// never lives in process memory, so concurrent signups cannot both claim the
// last free slot.
type RegisterHostHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Logger     *slog.Logger
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *RegisterHostHandler) Handle(ctx context.Context, cmd RegisterHostCommand) (*dto.HostRegistration, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	if existing, err := unit.HostRegistrations().ByUser(ctx, cmd.UserID); err == nil && existing != nil {
		return nil, domainhosts.ErrAlreadyRegistered
	} else if err != nil && !errors.Is(err, domainhosts.ErrRegistrationNotFound) {
		return nil, err
	}

	tier, err := domainhosts.ParseTier(cmd.Tier)
	if err != nil {
		return nil, err
	}
	method, err := domainhosts.ParsePaymentMethod(cmd.PaymentMethod)
	if err != nil {
		return nil, err
	}

	active, err := unit.HostCounter().ActiveHosts(ctx)
	if err != nil {
		return nil, err
	}

	now := h.now()
	reg, err := domainhosts.NewRegistration(domainhosts.RegisterParams{
		ID:            domainhosts.RegistrationID(uuid.NewString()),
		UserID:        cmd.UserID,
		FullName:      cmd.FullName,
		Email:         cmd.Email,
		Tier:          tier,
		PaymentMethod: method,
		ActiveHosts:   active,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	if !reg.AmountDue.IsZero() {
		if h.Payments == nil {
			return nil, policies.ErrPaymentNotCaptured
		}
		verification, err := h.Payments.Verify(ctx, cmd.PaymentRef)
		if err != nil {
			return nil, err
		}
		if !verification.Captured {
			return nil, policies.ErrPaymentNotCaptured
		}
		if verification.Amount.Amount != reg.AmountDue.Amount || verification.Amount.Currency != reg.AmountDue.Currency {
			return nil, policies.ErrAmountMismatch
		}
	}

	if err := unit.HostRegistrations().Save(ctx, reg); err != nil {
		return nil, err
	}
	if _, err := unit.HostCounter().IncrementActiveHosts(ctx); err != nil {
		return nil, err
	}

	if cmd.UserID != "" {
		if host, err := unit.Users().ByID(ctx, domainuser.ID(cmd.UserID)); err == nil {
			if err := host.EnsureRole(domainuser.RoleHost, now); err == nil {
				if err := unit.Users().Save(ctx, host); err != nil {
					return nil, err
				}
			}
		}
	}

	pending := reg.PendingEvents()
	reg.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("host registered",
			"registration_id", reg.ID, "tier", reg.Tier,
			"promo_applied", reg.PromoApplied, "amount_due", reg.AmountDue.Amount)
	}

	result := dto.MapHostRegistration(reg)
	return &result, nil
}

func (h *RegisterHostHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RegisterHostCommand, *dto.HostRegistration] = (*RegisterHostHandler)(nil)
var _ middleware.IdempotentCommand = (*RegisterHostCommand)(nil)
