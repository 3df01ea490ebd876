package outbox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "github.com/calemaley/airbnb/internal/app/outbox"
)

const (
	statusPending = "PENDING"
	statusSent    = "SENT"
)

// Store persists outbox events in Mongo. Add runs inside the caller's
// session, so an event is only visible once the surrounding transaction
// commits; Flush is a no-op because the worker owns delivery.
type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection("outbox")}
}

type EventDocument struct {
	ID         string            `bson:"_id"`
	Name       string            `bson:"name"`
	Payload    []byte            `bson:"payload"`
	OccurredAt time.Time         `bson:"occurred_at"`
	Aggregate  string            `bson:"aggregate"`
	Headers    map[string]string `bson:"headers"`
	Status     string            `bson:"status"`
	Attempts   int               `bson:"attempts"`
	NextRetry  time.Time         `bson:"next_retry"`
	ClaimedBy  string            `bson:"claimed_by,omitempty"`
	LastError  string            `bson:"last_error,omitempty"`
}

func (s *Store) Add(ctx context.Context, record appoutbox.EventRecord) error {
	doc := EventDocument{
		ID:         record.ID,
		Name:       record.Name,
		Payload:    record.Payload,
		OccurredAt: record.OccurredAt,
		Aggregate:  record.Aggregate,
		Headers:    record.Headers,
		Status:     statusPending,
		NextRetry:  record.OccurredAt,
	}
	_, err := s.col.InsertOne(ctx, doc)
	return err
}

func (s *Store) Flush(ctx context.Context) error {
	return nil
}

// Claim atomically leases the oldest due pending event for one worker.
func (s *Store) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	filter := bson.M{
		"status":     statusPending,
		"next_retry": bson.M{"$lte": time.Now()},
	}
	update := bson.M{"$set": bson.M{"claimed_by": workerID}, "$inc": bson.M{"attempts": 1}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
		SetReturnDocument(options.After)
	var doc EventDocument
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": statusSent}})
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id string, nextRetry time.Time, reason string) error {
	update := bson.M{"$set": bson.M{"next_retry": nextRetry, "last_error": reason}}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

var _ appoutbox.Outbox = (*Store)(nil)
