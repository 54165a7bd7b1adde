package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps maps in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	maps     map[string]*Map
	versions map[string][]*Version
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		maps:     make(map[string]*Map),
		versions: make(map[string][]*Version),
		now:      time.Now,
	}
}

func (s *MemoryStore) CreateMap(ctx context.Context, owner, title string) (*Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := NewMap(owner, title, s.now().UTC())
	s.maps[m.ID] = m
	out := *m
	return &out, nil
}

func (s *MemoryStore) GetMap(ctx context.Context, id string) (*Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.maps[id]
	if !ok {
		return nil, nil
	}
	out := *m
	return &out, nil
}

func (s *MemoryStore) UpdateTitle(ctx context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.maps[id]
	if !ok {
		return MapNotFound(id)
	}
	m.Title = title
	m.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemoryStore) SaveVersion(ctx context.Context, mapID string, content Content, syntax string) (*Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.maps[mapID]
	if !ok {
		return nil, MapNotFound(mapID)
	}
	now := s.now().UTC()
	v := NewVersion(mapID, len(s.versions[mapID])+1, content, syntax, now)
	s.versions[mapID] = append(s.versions[mapID], v)
	m.UpdatedAt = now
	out := *v
	return &out, nil
}

func (s *MemoryStore) LatestVersion(ctx context.Context, mapID string) (*Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vs := s.versions[mapID]
	if len(vs) == 0 {
		return nil, nil
	}
	out := *vs[len(vs)-1]
	return &out, nil
}

func (s *MemoryStore) ListMaps(ctx context.Context, owner string) ([]Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Map
	for _, m := range s.maps {
		if m.Owner == owner {
			out = append(out, *m)
		}
	}
	SortByUpdated(out)
	return out, nil
}

func (s *MemoryStore) DeleteMap(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.maps[id]; !ok {
		return MapNotFound(id)
	}
	delete(s.maps, id)
	delete(s.versions, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
