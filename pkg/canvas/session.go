package canvas

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/generate"
	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/observability"
	"github.com/kobex777/anymaps/pkg/store"
	"github.com/kobex777/anymaps/pkg/topology"
)

// DefaultTitle names a map before the generation service has titled it.
const DefaultTitle = "Untitled Map"

// WelcomeMessage opens every new chat log.
const WelcomeMessage = "Welcome to AnyMaps. Describe a topic, paste notes or attach a sketch, and I will draft a map you can rearrange and refine."

// ChatEntry is one message of the conversation that produced a map.
type ChatEntry = store.ChatEntry

// =============================================================================
// Options
// =============================================================================

// Options configures a [Session].
type Options struct {
	// GenerateTimeout bounds one generation call.
	GenerateTimeout time.Duration `json:"generate_timeout"`

	// EnhanceTimeout bounds one enhancement call. Enhancement sends the whole
	// current map, so it gets a longer budget than generation.
	EnhanceTimeout time.Duration `json:"enhance_timeout"`

	// Layout configures the tree layout.
	Layout layout.Options `json:"layout"`

	// Owner is recorded on maps created by this session.
	Owner string `json:"owner"`

	// Logger for pipeline logging.
	Logger *log.Logger `json:"-"`

	// OnStatus observes every status transition. It runs with the session
	// locked and must not call back into it.
	OnStatus func(Status) `json:"-"`

	validated bool
}

// Default option values.
const (
	DefaultGenerateTimeout = 60 * time.Second
	DefaultEnhanceTimeout  = 120 * time.Second
	DefaultOwner           = "local"
)

// ValidateAndSetDefaults validates options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.GenerateTimeout <= 0 {
		o.GenerateTimeout = DefaultGenerateTimeout
	}
	if o.EnhanceTimeout <= 0 {
		o.EnhanceTimeout = DefaultEnhanceTimeout
	}
	if o.Owner == "" {
		o.Owner = DefaultOwner
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Layout.Logger == nil {
		o.Layout.Logger = o.Logger
	}
	if err := o.Layout.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// =============================================================================
// Session
// =============================================================================

// Session is the state of one open map.
type Session struct {
	mu    sync.Mutex
	gen   generate.Generator
	store store.Store
	opts  Options

	graph       graph.Graph
	chat        []ChatEntry
	status      Status
	mapID       string
	title       string
	spec        *topology.Spec
	syntax      string
	lastSavedAt time.Time

	asyncMu sync.Mutex
	saves   *errgroup.Group

	now func() time.Time
}

// New creates a session in the idle state. A nil store keeps maps in memory.
func New(gen generate.Generator, st store.Store, opts Options) (*Session, error) {
	if gen == nil {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "canvas session requires a generator")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	s := &Session{
		gen:   gen,
		store: st,
		opts:  opts,
		saves: new(errgroup.Group),
		now:   time.Now,
	}
	s.resetLocked()
	return s, nil
}

// Reset discards the map and returns to the initial idle state with a fresh
// chat log. Pending asynchronous saves are not cancelled.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.opts.Logger.Debug("session reset")
}

func (s *Session) resetLocked() {
	s.graph = graph.Graph{}
	s.chat = []ChatEntry{s.entry(store.RoleAssistant, WelcomeMessage)}
	s.status = StatusIdle
	s.mapID = ""
	s.title = DefaultTitle
	s.spec = nil
	s.syntax = ""
	s.lastSavedAt = time.Time{}
}

// =============================================================================
// Accessors
// =============================================================================

// Graph returns a copy of the current graph.
func (s *Session) Graph() graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Clone()
}

// Status returns the current pipeline status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// MapID returns the id the map is saved under, or "" before the first save.
func (s *Session) MapID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapID
}

// Title returns the map title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Spec returns a copy of the current specification, or nil.
func (s *Session) Spec() *topology.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec.Clone()
}

// Syntax returns the graph syntax of the current map.
func (s *Session) Syntax() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syntax
}

// LastSavedAt returns the time of the last successful save.
func (s *Session) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSavedAt
}

// Chat returns a copy of the chat log.
func (s *Session) Chat() []ChatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneChat(s.chat)
}

// Snapshot is a consistent copy of the whole session state.
type Snapshot struct {
	MapID       string         `json:"map_id,omitempty"`
	Title       string         `json:"title"`
	Status      Status         `json:"status"`
	Graph       graph.Graph    `json:"graph"`
	Spec        *topology.Spec `json:"spec,omitempty"`
	Syntax      string         `json:"syntax,omitempty"`
	Chat        []ChatEntry    `json:"chat"`
	LastSavedAt *time.Time     `json:"last_saved_at,omitempty"`
}

// Snapshot returns the session state taken under a single lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		MapID:  s.mapID,
		Title:  s.title,
		Status: s.status,
		Graph:  s.graph.Clone(),
		Spec:   s.spec.Clone(),
		Syntax: s.syntax,
		Chat:   cloneChat(s.chat),
	}
	if !s.lastSavedAt.IsZero() {
		t := s.lastSavedAt
		snap.LastSavedAt = &t
	}
	return snap
}

// FocusPrompt returns the label of a node, used to seed the next prompt when
// a node is clicked.
func (s *Session) FocusPrompt(nodeID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.graph.Node(nodeID)
	if n == nil {
		return "", errs.New(errs.ErrCodeNotFound, "node %q not found", nodeID)
	}
	return n.Label, nil
}

// =============================================================================
// Internal helpers (caller holds mu)
// =============================================================================

func (s *Session) setStatus(ctx context.Context, st Status) {
	if s.status == st {
		return
	}
	s.opts.Logger.Debug("status", "from", s.status, "to", st)
	s.status = st
	observability.Pipeline().OnStatus(ctx, string(st))
	if s.opts.OnStatus != nil {
		s.opts.OnStatus(st)
	}
}

func (s *Session) entry(role, content string, suggestions ...string) ChatEntry {
	return ChatEntry{
		ID:          uuid.NewString(),
		Role:        role,
		Content:     content,
		Suggestions: suggestions,
		CreatedAt:   s.now().UTC(),
	}
}

func (s *Session) say(role, content string, suggestions ...string) {
	s.chat = append(s.chat, s.entry(role, content, suggestions...))
}

func cloneChat(chat []ChatEntry) []ChatEntry {
	out := slices.Clone(chat)
	for i := range out {
		out[i].Suggestions = slices.Clone(out[i].Suggestions)
	}
	return out
}
