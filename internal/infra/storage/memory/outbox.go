package memory

import (
	"context"
	"sync"

	appoutbox "github.com/calemaley/airbnb/internal/app/outbox"
)

// Publisher receives flushed event records.
type Publisher interface {
	Publish(ctx context.Context, record appoutbox.EventRecord) error
}

// Outbox buffers events in memory until flushed. With no publisher configured
// a flush simply drops the buffer, which is what tests want.
type Outbox struct {
	mu        sync.Mutex
	records   []appoutbox.EventRecord
	publisher Publisher
}

func NewOutbox(publisher Publisher) *Outbox {
	return &Outbox{publisher: publisher}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()

	if o.publisher == nil {
		return nil
	}
	for _, record := range pending {
		if err := o.publisher.Publish(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// Pending returns a snapshot of buffered records.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
