package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type stubStore struct {
	doc    *EventDocument
	sent   []string
	failed []string
}

func (s *stubStore) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	doc := s.doc
	s.doc = nil
	return doc, nil
}

func (s *stubStore) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *stubStore) MarkFailed(ctx context.Context, id string, nextRetry time.Time, reason string) error {
	s.failed = append(s.failed, id)
	return nil
}

type stubProducer struct {
	topic   string
	key     string
	payload []byte
	err     error
}

func (p *stubProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.topic = topic
	p.key = key
	p.payload = payload
	return nil
}

func pendingDoc() *EventDocument {
	return &EventDocument{
		ID:         "evt-1",
		Name:       "booking.confirmed",
		Payload:    []byte(`{"booking_id":"bk-1"}`),
		OccurredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Aggregate:  "bk-1",
	}
}

func TestWorkerPublishesCloudEvent(t *testing.T) {
	store := &stubStore{doc: pendingDoc()}
	producer := &stubProducer{}
	w := &Worker{Store: store, Producer: producer, ID: "w-1"}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce() error = %v", err)
	}
	if producer.topic != "booking.events.v1" {
		t.Fatalf("topic = %q, want %q", producer.topic, "booking.events.v1")
	}
	if producer.key != "bk-1" {
		t.Fatalf("key = %q, want %q", producer.key, "bk-1")
	}

	var evt map[string]any
	if err := json.Unmarshal(producer.payload, &evt); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if evt["type"] != "booking.confirmed.v1" {
		t.Fatalf("type = %v, want booking.confirmed.v1", evt["type"])
	}
	if len(store.sent) != 1 || store.sent[0] != "evt-1" {
		t.Fatalf("sent = %v, want [evt-1]", store.sent)
	}
}

func TestWorkerTopicPrefix(t *testing.T) {
	w := &Worker{TopicPrefix: "stg."}
	if got := w.topicFor("hosts.registered"); got != "stg.hosts.events.v1" {
		t.Fatalf("topicFor = %q, want %q", got, "stg.hosts.events.v1")
	}
}

func TestWorkerMarksFailedOnPublishError(t *testing.T) {
	store := &stubStore{doc: pendingDoc()}
	producer := &stubProducer{err: errors.New("broker down")}
	w := &Worker{Store: store, Producer: producer, ID: "w-1"}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce() error = %v", err)
	}
	if len(store.failed) != 1 {
		t.Fatalf("failed = %v, want one entry", store.failed)
	}
	if len(store.sent) != 0 {
		t.Fatalf("sent = %v, want empty", store.sent)
	}
}
