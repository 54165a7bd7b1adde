// Package store persists mind maps and their version history.
//
// A [Map] is a titled, owned container. Its content lives in an append-only
// list of immutable [Version] snapshots; the current state of a map is its
// most recently appended version.
//
// # Backends
//
//   - [FileStore]: JSON files under a data directory (CLI default)
//   - [MemoryStore]: in-process maps for tests and the offline server
//   - redisstore.Store: Redis-backed storage for shared deployments
//   - mongostore.Store: MongoDB-backed storage
//
// All backends satisfy [Store] and pass the storetest conformance suite.
//
// # Usage
//
//	st, err := store.NewFileStore("")
//	m, err := st.CreateMap(ctx, "local", "Jazz History")
//	v, err := st.SaveVersion(ctx, m.ID, content, syntax)
//
//	latest, err := st.LatestVersion(ctx, m.ID)
//	if latest == nil {
//	    // map has no versions yet
//	}
package store

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/topology"
)

// Map is a saved mind map.
type Map struct {
	ID        string    `json:"id" bson:"_id"`
	Owner     string    `json:"user_id" bson:"owner"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	Public    bool      `json:"is_public" bson:"public"`
}

// Version is an immutable snapshot of a map's content.
type Version struct {
	ID        string    `json:"id" bson:"_id"`
	MapID     string    `json:"map_id" bson:"map_id"`
	Number    int       `json:"number" bson:"number"` // 1-based, increasing per map
	Content   Content   `json:"content" bson:"content"`
	Syntax    string    `json:"mermaid_syntax,omitempty" bson:"syntax,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Content is the payload of a version.
type Content struct {
	Nodes   []graph.Node   `json:"nodes" bson:"nodes"`
	Edges   []graph.Edge   `json:"edges" bson:"edges"`
	Spec    *topology.Spec `json:"plannerSpec,omitempty" bson:"spec,omitempty"`
	ChatLog []ChatEntry    `json:"chatHistory,omitempty" bson:"chat_log,omitempty"`
}

// Graph returns the interactive graph held by c.
func (c Content) Graph() graph.Graph {
	return graph.Graph{Nodes: c.Nodes, Edges: c.Edges}
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatEntry is one message of the conversation that produced a map.
type ChatEntry struct {
	ID          string    `json:"id" bson:"id"`
	Role        string    `json:"role" bson:"role"`
	Content     string    `json:"content" bson:"content"`
	Suggestions []string  `json:"suggestions,omitempty" bson:"suggestions,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Store is the interface for map persistence backends.
type Store interface {
	// CreateMap creates an empty map owned by owner.
	CreateMap(ctx context.Context, owner, title string) (*Map, error)

	// GetMap returns a map by id.
	// Returns nil, nil if the map doesn't exist.
	GetMap(ctx context.Context, id string) (*Map, error)

	// UpdateTitle renames a map and bumps its UpdatedAt.
	UpdateTitle(ctx context.Context, id, title string) error

	// SaveVersion appends a version and bumps the map's UpdatedAt.
	SaveVersion(ctx context.Context, mapID string, content Content, syntax string) (*Version, error)

	// LatestVersion returns the most recent version of a map.
	// Returns nil, nil if the map has no versions.
	LatestVersion(ctx context.Context, mapID string) (*Version, error)

	// ListMaps returns the maps of owner, most recently updated first.
	ListMaps(ctx context.Context, owner string) ([]Map, error)

	// DeleteMap removes a map and all of its versions.
	DeleteMap(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// NewID returns a fresh map or version id.
func NewID() string { return uuid.NewString() }

// NewMap builds a map record stamped with now.
func NewMap(owner, title string, now time.Time) *Map {
	return &Map{ID: NewID(), Owner: owner, Title: title, CreatedAt: now, UpdatedAt: now}
}

// NewVersion builds the version numbered n of mapID.
func NewVersion(mapID string, n int, content Content, syntax string, now time.Time) *Version {
	return &Version{ID: NewID(), MapID: mapID, Number: n, Content: content, Syntax: syntax, CreatedAt: now}
}

// MapNotFound returns the error reported for operations on a missing map.
func MapNotFound(id string) error {
	return errs.New(errs.ErrCodeMapNotFound, "map %q not found", id)
}

// Failed wraps a backend failure as a persistence error.
func Failed(err error, op string) error {
	return errs.Wrap(errs.ErrCodePersistence, err, "%s", op)
}

// SortByUpdated orders maps most recently updated first, breaking ties by id.
func SortByUpdated(maps []Map) {
	slices.SortFunc(maps, func(a, b Map) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
