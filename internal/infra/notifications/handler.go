package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"
)

// Handler consumes platform events and surfaces host-facing notifications.
// Delivery is log-based for now; the hook is where mail or SMS goes later.
type Handler struct {
	Logger *slog.Logger
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (h Handler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt envelope
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("unreadable event, skipping", "topic", msg.Topic, "error", err)
		}
		return nil
	}
	switch evt.Type {
	case "booking.confirmed.v1":
		h.notifyBooking(evt.Data)
	case "hosts.registered.v1":
		h.notifyHostRegistered(evt.Data)
	}
	return nil
}

func (h Handler) notifyBooking(data json.RawMessage) {
	if h.Logger == nil {
		return
	}
	var payload struct {
		BookingID string `json:"booking_id"`
		ListingID string `json:"listing_id"`
		HostID    string `json:"host_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		h.Logger.Warn("booking notification payload unreadable", "error", err)
		return
	}
	h.Logger.Info("notify host: new booking",
		"booking_id", payload.BookingID,
		"listing_id", payload.ListingID,
		"host_id", payload.HostID,
	)
}

func (h Handler) notifyHostRegistered(data json.RawMessage) {
	if h.Logger == nil {
		return
	}
	var payload struct {
		RegistrationID string `json:"registration_id"`
		Tier           string `json:"tier"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		h.Logger.Warn("host registration payload unreadable", "error", err)
		return
	}
	h.Logger.Info("notify ops: host registered", "registration_id", payload.RegistrationID, "tier", payload.Tier)
}
