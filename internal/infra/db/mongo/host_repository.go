package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainhosts "github.com/calemaley/airbnb/internal/domain/hosts"
	"github.com/calemaley/airbnb/internal/domain/shared/money"
)

type HostRegistrationRepository struct {
	col *mongo.Collection
}

func NewHostRegistrationRepository(db *mongo.Database) *HostRegistrationRepository {
	return &HostRegistrationRepository{col: db.Collection("agg_host_registration")}
}

func (r *HostRegistrationRepository) Save(ctx context.Context, reg *domainhosts.Registration) error {
	doc := newRegistrationDocument(reg)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *HostRegistrationRepository) ByUser(ctx context.Context, userID string) (*domainhosts.Registration, error) {
	var doc registrationDocument
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainhosts.ErrRegistrationNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

type registrationDocument struct {
	ID            string `bson:"_id"`
	UserID        string `bson:"user_id"`
	FullName      string `bson:"full_name"`
	Email         string `bson:"email"`
	Tier          string `bson:"tier"`
	PaymentMethod string `bson:"payment_method"`
	AmountDue     int64  `bson:"amount_due"`
	Currency      string `bson:"currency"`
	PromoApplied  bool   `bson:"promo_applied"`
	CreatedAt     int64  `bson:"created_at"`
}

func newRegistrationDocument(reg *domainhosts.Registration) registrationDocument {
	return registrationDocument{
		ID:            string(reg.ID),
		UserID:        reg.UserID,
		FullName:      reg.FullName,
		Email:         reg.Email,
		Tier:          string(reg.Tier),
		PaymentMethod: string(reg.PaymentMethod),
		AmountDue:     reg.AmountDue.Amount,
		Currency:      reg.AmountDue.Currency,
		PromoApplied:  reg.PromoApplied,
		CreatedAt:     reg.CreatedAt.UnixMilli(),
	}
}

func (d registrationDocument) toAggregate() *domainhosts.Registration {
	return &domainhosts.Registration{
		ID:            domainhosts.RegistrationID(d.ID),
		UserID:        d.UserID,
		FullName:      d.FullName,
		Email:         d.Email,
		Tier:          domainhosts.Tier(d.Tier),
		PaymentMethod: domainhosts.PaymentMethod(d.PaymentMethod),
		AmountDue:     money.Money{Amount: d.AmountDue, Currency: d.Currency},
		PromoApplied:  d.PromoApplied,
		CreatedAt:     timestampToTime(d.CreatedAt),
	}
}

// HostCounterStore keeps the active-host tally in a single counter document
// so the launch promo decides membership atomically across instances.
type HostCounterStore struct {
	col *mongo.Collection
}

func NewHostCounterStore(db *mongo.Database) *HostCounterStore {
	return &HostCounterStore{col: db.Collection("counters")}
}

const hostCounterID = "active_hosts"

func (s *HostCounterStore) ActiveHosts(ctx context.Context) (int64, error) {
	var doc counterDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": hostCounterID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return doc.Value, nil
}

func (s *HostCounterStore) IncrementActiveHosts(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc counterDocument
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": hostCounterID}, bson.M{"$inc": bson.M{"value": 1}}, opts).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Value, nil
}

type counterDocument struct {
	ID    string `bson:"_id"`
	Value int64  `bson:"value"`
}
