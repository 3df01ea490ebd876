package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "github.com/calemaley/airbnb/internal/domain/booking"
	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
	domainreviews "github.com/calemaley/airbnb/internal/domain/reviews"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("agg_review")}
}

func (r *ReviewRepository) ByListingAndAuthor(ctx context.Context, listingID domainlistings.ListingID, authorID string) (*domainreviews.Review, error) {
	var doc reviewDocument
	filter := bson.M{"listing_id": string(listingID), "author_id": authorID}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID, limit, offset int) ([]*domainreviews.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if offset > 0 {
		opts = opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := r.col.Find(ctx, bson.M{"listing_id": string(listingID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainreviews.Review
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type reviewDocument struct {
	ID         string  `bson:"_id"`
	ListingID  string  `bson:"listing_id"`
	BookingID  string  `bson:"booking_id"`
	AuthorID   string  `bson:"author_id"`
	AuthorName string  `bson:"author_name"`
	Rating     float64 `bson:"rating"`
	Comment    string  `bson:"comment"`
	CreatedAt  int64   `bson:"created_at"`
}

func newReviewDocument(review *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:         string(review.ID),
		ListingID:  string(review.ListingID),
		BookingID:  string(review.BookingID),
		AuthorID:   review.AuthorID,
		AuthorName: review.AuthorName,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:         domainreviews.ReviewID(d.ID),
		ListingID:  domainlistings.ListingID(d.ListingID),
		BookingID:  domainbooking.BookingID(d.BookingID),
		AuthorID:   d.AuthorID,
		AuthorName: d.AuthorName,
		Rating:     d.Rating,
		Comment:    d.Comment,
		CreatedAt:  timestampToTime(d.CreatedAt),
	}
}
