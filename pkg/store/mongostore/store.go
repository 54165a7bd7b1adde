// Package mongostore implements store.Store on MongoDB.
//
// Maps live in the "maps" collection keyed by id; versions live in
// "versions" with a unique (map_id, number) index.
package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kobex777/anymaps/pkg/store"
)

// DefaultDatabase is used when Config.Database is empty.
const DefaultDatabase = "anymaps"

// Config holds MongoDB connection settings.
type Config struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// Store is a MongoDB-backed map store.
type Store struct {
	client   *mongo.Client
	maps     *mongo.Collection
	versions *mongo.Collection
}

// New connects to MongoDB, verifies the connection and ensures indexes.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, store.Failed(err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, store.Failed(err, "ping mongodb")
	}
	db := cfg.Database
	if db == "" {
		db = DefaultDatabase
	}
	s := &Store{
		client:   client,
		maps:     client.Database(db).Collection("maps"),
		versions: client.Database(db).Collection("versions"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.versions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "map_id", Value: 1}, {Key: "number", Value: -1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return store.Failed(err, "create version index")
	}
	_, err = s.maps.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "updated_at", Value: -1}},
	})
	if err != nil {
		return store.Failed(err, "create map index")
	}
	return nil
}

// Mongo keeps millisecond precision; truncating up front keeps returned
// records equal to stored ones.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *Store) CreateMap(ctx context.Context, owner, title string) (*store.Map, error) {
	m := store.NewMap(owner, title, now())
	if _, err := s.maps.InsertOne(ctx, m); err != nil {
		return nil, store.Failed(err, "insert map")
	}
	return m, nil
}

func (s *Store) GetMap(ctx context.Context, id string) (*store.Map, error) {
	var m store.Map
	err := s.maps.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Failed(err, "find map")
	}
	return &m, nil
}

func (s *Store) UpdateTitle(ctx context.Context, id, title string) error {
	res, err := s.maps.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"title": title, "updated_at": now()}})
	if err != nil {
		return store.Failed(err, "update map")
	}
	if res.MatchedCount == 0 {
		return store.MapNotFound(id)
	}
	return nil
}

func (s *Store) SaveVersion(ctx context.Context, mapID string, content store.Content, syntax string) (*store.Version, error) {
	t := now()
	var counter struct {
		Versions int `bson:"version_count"`
	}
	err := s.maps.FindOneAndUpdate(ctx, bson.M{"_id": mapID},
		bson.M{"$inc": bson.M{"version_count": 1}, "$set": bson.M{"updated_at": t}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&counter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.MapNotFound(mapID)
	}
	if err != nil {
		return nil, store.Failed(err, "bump version counter")
	}

	v := store.NewVersion(mapID, counter.Versions, content, syntax, t)
	if _, err := s.versions.InsertOne(ctx, v); err != nil {
		return nil, store.Failed(err, "insert version")
	}
	return v, nil
}

func (s *Store) LatestVersion(ctx context.Context, mapID string) (*store.Version, error) {
	var v store.Version
	err := s.versions.FindOne(ctx, bson.M{"map_id": mapID},
		options.FindOne().SetSort(bson.D{{Key: "number", Value: -1}}),
	).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Failed(err, "find version")
	}
	return &v, nil
}

func (s *Store) ListMaps(ctx context.Context, owner string) ([]store.Map, error) {
	cur, err := s.maps.Find(ctx, bson.M{"owner": owner},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, store.Failed(err, "list maps")
	}
	var out []store.Map
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.Failed(err, "decode maps")
	}
	return out, nil
}

func (s *Store) DeleteMap(ctx context.Context, id string) error {
	res, err := s.maps.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.Failed(err, "delete map")
	}
	if res.DeletedCount == 0 {
		return store.MapNotFound(id)
	}
	if _, err := s.versions.DeleteMany(ctx, bson.M{"map_id": id}); err != nil {
		return store.Failed(err, "delete versions")
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ store.Store = (*Store)(nil)
