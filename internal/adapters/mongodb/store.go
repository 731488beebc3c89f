package mongodb_adapter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listingDocument struct {
	ID             string `bson:"_id"`
	domain.Listing `bson:",inline"`
}

type profileDocument struct {
	ID             string `bson:"_id"`
	domain.Profile `bson:",inline"`
}

// MongoStore keeps listings and profiles in two collections.
type MongoStore struct {
	listings *mongo.Collection
	profiles *mongo.Collection
}

var _ port.StorePort = (*MongoStore)(nil)

func NewMongoStore(db *mongo.Database) (*MongoStore, error) {
	if db == nil {
		return nil, fmt.Errorf("mongo.Database cannot be nil")
	}
	return &MongoStore{
		listings: db.Collection(string(domain.CollectionListings)),
		profiles: db.Collection(string(domain.CollectionProfiles)),
	}, nil
}

// EnsureIndexes creates the indexes used by catalog queries.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.listings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "verified", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "geohash", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create listing indexes: %w", err)
	}
	_, err = s.profiles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isAgent", Value: 1}, {Key: "verified", Value: 1}}},
		{Keys: bson.D{{Key: "isBuilder", Value: 1}, {Key: "verified", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create profile indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) collection(c domain.Collection) (*mongo.Collection, error) {
	switch c {
	case domain.CollectionListings:
		return s.listings, nil
	case domain.CollectionProfiles:
		return s.profiles, nil
	default:
		return nil, fmt.Errorf("unknown collection %q", c)
	}
}

func (s *MongoStore) Create(ctx context.Context, listing *domain.Listing) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{"component": "MongoStore", "method": "Create", "listing_id": listing.ID.String()})

	_, err := s.listings.InsertOne(ctx, listingDocument{ID: listing.ID.String(), Listing: *listing})
	if err != nil {
		repoLogger.Error("Failed to insert listing", err, nil)
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

func (s *MongoStore) Replace(ctx context.Context, listing *domain.Listing) error {
	id := listing.ID.String()
	res, err := s.listings.ReplaceOne(ctx, bson.M{"_id": id}, listingDocument{ID: id, Listing: *listing})
	if err != nil {
		return fmt.Errorf("failed to replace listing: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (s *MongoStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var doc listingDocument
	err := s.listings.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing %s: %w", id, err)
	}
	return doc.toDomain()
}

func (s *MongoStore) SetVerified(ctx context.Context, id uuid.UUID, verified bool, at time.Time) (*domain.Listing, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"verified": verified, "updatedAt": at}}

	var doc listingDocument
	err := s.listings.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to set verification on %s: %w", id, err)
	}
	return doc.toDomain()
}

// IncrementCounter uses an update pipeline so the floor at zero is applied atomically.
func (s *MongoStore) IncrementCounter(ctx context.Context, id uuid.UUID, field domain.CounterField, delta int64) error {
	path := "counters." + string(field)
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			path: bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$" + path, 0}}, delta}}}},
		}}},
	}
	res, err := s.listings.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to increment %s on %s: %w", field, id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (s *MongoStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var doc profileDocument
	err := s.profiles.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	return doc.toDomain()
}

func (s *MongoStore) Count(ctx context.Context, q domain.ListQuery) (int64, error) {
	coll, err := s.collection(q.Collection)
	if err != nil {
		return 0, err
	}
	total, err := coll.CountDocuments(ctx, buildFilter(q))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", q.Catalog, err)
	}
	return total, nil
}

func (s *MongoStore) FindPage(ctx context.Context, q domain.ListQuery) ([]interface{}, error) {
	coll, err := s.collection(q.Collection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(buildSort(q.Sort)).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := coll.Find(ctx, buildFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s page: %w", q.Catalog, err)
	}
	defer cursor.Close(ctx)

	items := make([]interface{}, 0, q.Limit)
	for cursor.Next(ctx) {
		var item interface{}
		if q.Collection == domain.CollectionProfiles {
			var doc profileDocument
			if err := cursor.Decode(&doc); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", q.Catalog, err)
			}
			item, err = doc.toDomain()
		} else {
			var doc listingDocument
			if err := cursor.Decode(&doc); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", q.Catalog, err)
			}
			item, err = doc.toDomain()
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error during %s iteration: %w", q.Catalog, err)
	}
	return items, nil
}

func (s *MongoStore) Distinct(ctx context.Context, q domain.ListQuery, facet domain.FacetSpec) ([]string, error) {
	coll, err := s.collection(q.Collection)
	if err != nil {
		return nil, err
	}
	raw, err := coll.Distinct(ctx, facet.Path, buildFilter(q))
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct %s: %w", facet.Name, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok || str == "" {
			continue
		}
		values = append(values, str)
	}
	sort.Strings(values)
	return values, nil
}

func (d listingDocument) toDomain() (*domain.Listing, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("listing has malformed id %q: %w", d.ID, err)
	}
	l := d.Listing
	l.ID = id
	return &l, nil
}

func (d profileDocument) toDomain() (*domain.Profile, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("profile has malformed id %q: %w", d.ID, err)
	}
	p := d.Profile
	p.ID = id
	return &p, nil
}
