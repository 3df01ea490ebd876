package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainpricing "github.com/calemaley/airbnb/internal/domain/pricing"
	domainrange "github.com/calemaley/airbnb/internal/domain/shared/daterange"
	"github.com/calemaley/airbnb/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"listing_id": string(listingID)})
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type bookingDocument struct {
	ID         string        `bson:"_id"`
	ListingID  string        `bson:"listing_id"`
	GuestID    string        `bson:"guest_id"`
	HostID     string        `bson:"host_id"`
	Range      rangeDocument `bson:"range"`
	Guests     int           `bson:"guests"`
	Price      quoteDocument `bson:"price"`
	State      string        `bson:"state"`
	PaymentRef string        `bson:"payment_ref"`
	Contact    contactDoc    `bson:"contact"`
	CreatedAt  int64         `bson:"created_at"`
	Version    int64         `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type quoteDocument struct {
	Nights        int    `bson:"nights"`
	NightlyAmount int64  `bson:"nightly_amount"`
	TotalAmount   int64  `bson:"total_amount"`
	Currency      string `bson:"currency"`
}

type contactDoc struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Phone string `bson:"phone"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		GuestID:   b.GuestID,
		HostID:    string(b.HostID),
		Range:     rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:    b.Guests,
		Price: quoteDocument{
			Nights:        b.Price.Nights,
			NightlyAmount: b.Price.Nightly.Amount,
			TotalAmount:   b.Price.Total.Amount,
			Currency:      b.Price.Nightly.Currency,
		},
		State:      string(b.State),
		PaymentRef: b.PaymentRef,
		Contact:    contactDoc{Name: b.Contact.Name, Email: b.Contact.Email, Phone: b.Contact.Phone},
		CreatedAt:  b.CreatedAt.UnixMilli(),
		Version:    b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		GuestID:   d.GuestID,
		HostID:    domainlistings.HostID(d.HostID),
		Range: domainrange.DateRange{
			CheckIn:  timestampToTime(d.Range.CheckIn),
			CheckOut: timestampToTime(d.Range.CheckOut),
		},
		Guests: d.Guests,
		Price: domainpricing.Quote{
			Nights:  d.Price.Nights,
			Nightly: money.Money{Amount: d.Price.NightlyAmount, Currency: d.Price.Currency},
			Total:   money.Money{Amount: d.Price.TotalAmount, Currency: d.Price.Currency},
		},
		State:      domainbooking.BookingState(d.State),
		PaymentRef: d.PaymentRef,
		Contact:    domainbooking.GuestContact{Name: d.Contact.Name, Email: d.Contact.Email, Phone: d.Contact.Phone},
		CreatedAt:  timestampToTime(d.CreatedAt),
		Version:    d.Version,
	}
}
