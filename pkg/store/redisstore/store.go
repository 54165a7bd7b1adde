// Package redisstore implements store.Store on Redis.
//
// Key layout (all keys share a configurable prefix, default "anymaps"):
//
//	<prefix>:map:<id>         JSON map record
//	<prefix>:versions:<id>    list of JSON versions, oldest first
//	<prefix>:seq:<id>         version counter
//	<prefix>:owner:<owner>    sorted set of map ids scored by update time
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kobex777/anymaps/pkg/store"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "anymaps"

// Config holds Redis connection settings.
type Config struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

// Store is a Redis-backed map store.
type Store struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, store.Failed(err, "connect to redis at "+cfg.Addr)
	}
	return NewFromClient(client, cfg.Prefix), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, kind, id)
}

func now() time.Time {
	return time.Now().UTC()
}

func score(t time.Time) float64 {
	return float64(t.UnixMicro())
}

func (s *Store) CreateMap(ctx context.Context, owner, title string) (*store.Map, error) {
	m := store.NewMap(owner, title, now())
	if err := s.putMap(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) putMap(ctx context.Context, m *store.Map) error {
	data, err := json.Marshal(m)
	if err != nil {
		return store.Failed(err, "marshal map")
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key("map", m.ID), data, 0)
		pipe.ZAdd(ctx, s.key("owner", m.Owner), redis.Z{Score: score(m.UpdatedAt), Member: m.ID})
		return nil
	})
	if err != nil {
		return store.Failed(err, "write map")
	}
	return nil
}

func (s *Store) GetMap(ctx context.Context, id string) (*store.Map, error) {
	data, err := s.client.Get(ctx, s.key("map", id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Failed(err, "read map")
	}
	var m store.Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, store.Failed(err, "parse map")
	}
	return &m, nil
}

func (s *Store) UpdateTitle(ctx context.Context, id, title string) error {
	m, err := s.GetMap(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return store.MapNotFound(id)
	}
	m.Title = title
	m.UpdatedAt = now()
	return s.putMap(ctx, m)
}

func (s *Store) SaveVersion(ctx context.Context, mapID string, content store.Content, syntax string) (*store.Version, error) {
	m, err := s.GetMap(ctx, mapID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, store.MapNotFound(mapID)
	}
	n, err := s.client.Incr(ctx, s.key("seq", mapID)).Result()
	if err != nil {
		return nil, store.Failed(err, "next version number")
	}

	t := now()
	v := store.NewVersion(mapID, int(n), content, syntax, t)
	data, err := json.Marshal(v)
	if err != nil {
		return nil, store.Failed(err, "marshal version")
	}
	if err := s.client.RPush(ctx, s.key("versions", mapID), data).Err(); err != nil {
		return nil, store.Failed(err, "append version")
	}
	m.UpdatedAt = t
	if err := s.putMap(ctx, m); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) LatestVersion(ctx context.Context, mapID string) (*store.Version, error) {
	data, err := s.client.LIndex(ctx, s.key("versions", mapID), -1).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Failed(err, "read version")
	}
	var v store.Version
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, store.Failed(err, "parse version")
	}
	return &v, nil
}

func (s *Store) ListMaps(ctx context.Context, owner string) ([]store.Map, error) {
	ids, err := s.client.ZRevRange(ctx, s.key("owner", owner), 0, -1).Result()
	if err != nil {
		return nil, store.Failed(err, "list maps")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key("map", id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, store.Failed(err, "read maps")
	}

	out := make([]store.Map, 0, len(vals))
	for _, val := range vals {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var m store.Map
		if err := json.Unmarshal([]byte(str), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	store.SortByUpdated(out)
	return out, nil
}

func (s *Store) DeleteMap(ctx context.Context, id string) error {
	m, err := s.GetMap(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return store.MapNotFound(id)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key("map", id), s.key("versions", id), s.key("seq", id))
		pipe.ZRem(ctx, s.key("owner", m.Owner), id)
		return nil
	})
	if err != nil {
		return store.Failed(err, "delete map")
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

var _ store.Store = (*Store)(nil)
