package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "github.com/calemaley/airbnb/internal/domain/listings"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	doc := newListingDocument(listing)
	filter := bson.M{"_id": doc.ID, "version": listing.Version}
	doc.Version = listing.Version + 1
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
	listing.Version = doc.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	params = params.Normalized()
	filter := searchFilter(params)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}

	opts := options.Find().SetSort(searchSort(params.Sort))
	if params.Offset > 0 {
		opts = opts.SetSkip(int64(params.Offset))
	}
	if params.Limit > 0 {
		opts = opts.SetLimit(int64(params.Limit))
	}
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	result := domainlistings.SearchResult{Total: int(total)}
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainlistings.SearchResult{}, err
		}
		result.Items = append(result.Items, doc.toAggregate())
	}
	return result, cursor.Err()
}

func searchFilter(params domainlistings.SearchParams) bson.M {
	filter := bson.M{}
	if params.OnlyActive {
		filter["state"] = string(domainlistings.ListingActive)
	} else if len(params.States) > 0 {
		states := make([]string, 0, len(params.States))
		for _, s := range params.States {
			states = append(states, string(s))
		}
		filter["state"] = bson.M{"$in": states}
	}
	if params.Host != "" {
		filter["host_id"] = string(params.Host)
	}
	if params.LocationQuery != "" {
		pattern := primitive.Regex{Pattern: regexQuote(params.LocationQuery), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"location": pattern},
			bson.M{"name": pattern},
		}
	}
	if len(params.Categories) > 0 {
		categories := make([]string, 0, len(params.Categories))
		for _, c := range params.Categories {
			categories = append(categories, string(c))
		}
		filter["category"] = bson.M{"$in": categories}
	}
	if len(params.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": params.Amenities}
	}
	price := bson.M{}
	if params.PriceMin > 0 {
		price["$gte"] = params.PriceMin
	}
	if params.PriceMax > 0 {
		price["$lte"] = params.PriceMax
	}
	if len(price) > 0 {
		filter["nightly_rate"] = price
	}
	if params.MinRating > 0 {
		filter["rating"] = bson.M{"$gte": params.MinRating}
	}
	return filter
}

func searchSort(sort domainlistings.CatalogSort) bson.D {
	switch sort {
	case domainlistings.SortByPriceDesc:
		return bson.D{{Key: "nightly_rate", Value: -1}}
	case domainlistings.SortByRating:
		return bson.D{{Key: "rating", Value: -1}, {Key: "review_count", Value: -1}}
	case domainlistings.SortByNewest:
		return bson.D{{Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "nightly_rate", Value: 1}}
	}
}

func regexQuote(raw string) string {
	special := `\.+*?()|[]{}^$`
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		for _, s := range special {
			if r == s {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, r)
	}
	return string(out)
}

type listingDocument struct {
	ID          string   `bson:"_id"`
	HostID      string   `bson:"host_id"`
	HostName    string   `bson:"host_name"`
	HostPhone   string   `bson:"host_phone"`
	Name        string   `bson:"name"`
	Location    string   `bson:"location"`
	Category    string   `bson:"category"`
	NightlyRate int64    `bson:"nightly_rate"`
	PriceType   string   `bson:"price_type"`
	Description string   `bson:"description"`
	Images      []string `bson:"images"`
	Amenities   []string `bson:"amenities"`
	Rating      float64  `bson:"rating"`
	ReviewCount int      `bson:"review_count"`
	State       string   `bson:"state"`
	Lat         float64  `bson:"lat"`
	Lng         float64  `bson:"lng"`
	CreatedAt   int64    `bson:"created_at"`
	UpdatedAt   int64    `bson:"updated_at"`
	Version     int64    `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:          string(l.ID),
		HostID:      string(l.Host),
		HostName:    l.HostName,
		HostPhone:   l.HostPhone,
		Name:        l.Name,
		Location:    l.Location,
		Category:    string(l.Category),
		NightlyRate: l.NightlyRate,
		PriceType:   string(l.PriceType),
		Description: l.Description,
		Images:      l.Images,
		Amenities:   l.Amenities,
		Rating:      l.Rating,
		ReviewCount: l.ReviewCount,
		State:       string(l.State),
		Lat:         l.Lat,
		Lng:         l.Lng,
		CreatedAt:   l.CreatedAt.UnixMilli(),
		UpdatedAt:   l.UpdatedAt.UnixMilli(),
		Version:     l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Host:        domainlistings.HostID(d.HostID),
		HostName:    d.HostName,
		HostPhone:   d.HostPhone,
		Name:        d.Name,
		Location:    d.Location,
		Category:    domainlistings.Category(d.Category),
		NightlyRate: d.NightlyRate,
		PriceType:   domainlistings.PriceType(d.PriceType),
		Description: d.Description,
		Images:      d.Images,
		Amenities:   d.Amenities,
		Rating:      d.Rating,
		ReviewCount: d.ReviewCount,
		State:       domainlistings.ListingState(d.State),
		Lat:         d.Lat,
		Lng:         d.Lng,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
