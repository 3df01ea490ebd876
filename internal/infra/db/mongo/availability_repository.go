package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "github.com/calemaley/airbnb/internal/domain/availability"
	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainrange "github.com/calemaley/airbnb/internal/domain/shared/daterange"
)

type AvailabilityRepository struct {
	col *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{col: db.Collection("agg_calendar")}
}

// Calendar loads the full booked state for one listing. A missing document
// means the listing was never booked and yields a fresh calendar.
func (r *AvailabilityRepository) Calendar(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainavailability.NewCalendar(id), nil
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *AvailabilityRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	doc := newCalendarDocument(calendar)
	filter := bson.M{"_id": doc.ID, "version": calendar.Version}
	doc.Version = calendar.Version + 1
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
	calendar.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID      string          `bson:"_id"`
	Blocks  []blockDocument `bson:"blocks"`
	Version int64           `bson:"version"`
}

type blockDocument struct {
	Range     rangeDocument `bson:"range"`
	BookingID string        `bson:"booking_id"`
	CreatedAt int64         `bson:"created_at"`
}

func newCalendarDocument(c *domainavailability.Calendar) calendarDocument {
	doc := calendarDocument{ID: string(c.ListingID), Version: c.Version}
	for _, block := range c.Blocks {
		doc.Blocks = append(doc.Blocks, blockDocument{
			Range:     rangeDocument{CheckIn: block.Range.CheckIn.UnixMilli(), CheckOut: block.Range.CheckOut.UnixMilli()},
			BookingID: string(block.BookingID),
			CreatedAt: block.CreatedAt.UnixMilli(),
		})
	}
	return doc
}

func (d calendarDocument) toAggregate() *domainavailability.Calendar {
	calendar := domainavailability.NewCalendar(domainlistings.ListingID(d.ID))
	calendar.Version = d.Version
	for _, block := range d.Blocks {
		calendar.Blocks = append(calendar.Blocks, domainavailability.Block{
			Range: domainrange.DateRange{
				CheckIn:  timestampToTime(block.Range.CheckIn),
				CheckOut: timestampToTime(block.Range.CheckOut),
			},
			BookingID: domainbooking.BookingID(block.BookingID),
			CreatedAt: timestampToTime(block.CreatedAt),
		})
	}
	return calendar
}
