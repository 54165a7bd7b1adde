package canvas

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/observability"
	"github.com/kobex777/anymaps/pkg/store"
)

// =============================================================================
// Save
// =============================================================================

// Save appends the current map as a new version, creating the map on its
// first save. It reports whether anything was saved: an empty graph is
// skipped.
//
// A silent save only logs failures. An explicit save also reports the outcome
// in the chat log. Failures are returned as PERSISTENCE_ERROR either way.
func (s *Session) Save(ctx context.Context, silent bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, silent)
}

// SaveAsync dispatches a silent save in the background. The save runs after
// any operation currently holding the session; ordering between several
// pending saves is not guaranteed.
func (s *Session) SaveAsync(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.asyncMu.Lock()
	defer s.asyncMu.Unlock()
	s.saves.Go(func() error {
		_, err := s.Save(ctx, true)
		return err
	})
}

// Wait blocks until every save dispatched with [Session.SaveAsync] has
// finished and returns the first error among them.
func (s *Session) Wait() error {
	s.asyncMu.Lock()
	g := s.saves
	s.saves = new(errgroup.Group)
	s.asyncMu.Unlock()
	return g.Wait()
}

func (s *Session) saveSilently(ctx context.Context) {
	_, _ = s.save(ctx, true)
}

func (s *Session) save(ctx context.Context, silent bool) (bool, error) {
	if s.graph.IsEmpty() {
		s.opts.Logger.Debug("nothing to save")
		return false, nil
	}

	start := time.Now()
	v, err := s.persist(ctx)
	observability.Pipeline().OnSaveComplete(ctx, time.Since(start), err)
	if err != nil {
		if !errs.IsPersistence(err) {
			err = errs.Wrap(errs.ErrCodePersistence, err, "save map")
		}
		s.opts.Logger.Warn("save failed", "map", s.mapID, "silent", silent, "err", err)
		if !silent {
			s.say(store.RoleAssistant, saveFailed)
		}
		return false, err
	}

	s.lastSavedAt = v.CreatedAt
	s.opts.Logger.Debug("saved map", "map", s.mapID, "version", v.Number, "duration", time.Since(start))
	if !silent {
		s.say(store.RoleAssistant, fmt.Sprintf("Saved! Your map \"%s\" has been saved successfully.", s.title))
	}
	return true, nil
}

func (s *Session) persist(ctx context.Context) (*store.Version, error) {
	if s.mapID == "" {
		m, err := s.store.CreateMap(ctx, s.opts.Owner, s.title)
		if err != nil {
			return nil, err
		}
		s.mapID = m.ID
		s.opts.Logger.Info("created map", "map", m.ID, "title", m.Title)
	} else if err := s.store.UpdateTitle(ctx, s.mapID, s.title); err != nil {
		return nil, err
	}

	g := s.graph.Clone()
	content := store.Content{
		Nodes:   g.Nodes,
		Edges:   g.Edges,
		Spec:    s.spec.Clone(),
		ChatLog: cloneChat(s.chat),
	}
	return s.store.SaveVersion(ctx, s.mapID, content, s.syntax)
}

// =============================================================================
// Load
// =============================================================================

// Load replaces the session state with the latest version of a saved map and
// moves to [StatusReady]. A map without versions is reported as a
// PERSISTENCE_ERROR wrapping MAP_NOT_FOUND.
func (s *Session) Load(ctx context.Context, mapID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.GetMap(ctx, mapID)
	if err != nil {
		return loadFailed(err, mapID)
	}
	if m == nil {
		return loadFailed(store.MapNotFound(mapID), mapID)
	}
	v, err := s.store.LatestVersion(ctx, mapID)
	if err != nil {
		return loadFailed(err, mapID)
	}
	if v == nil {
		return loadFailed(errs.New(errs.ErrCodeMapNotFound, "map %s has no content", mapID), mapID)
	}

	g := graph.Graph{
		Nodes:     slices.Clone(v.Content.Nodes),
		Edges:     slices.Clone(v.Content.Edges),
		Direction: s.opts.Layout.Direction,
	}
	if err := g.Validate(); err != nil {
		return loadFailed(err, mapID)
	}

	s.graph = g.Clone()
	s.spec = v.Content.Spec.Clone()
	s.syntax = v.Syntax
	s.title = m.Title
	if s.title == "" {
		s.title = DefaultTitle
	}
	s.mapID = m.ID
	s.lastSavedAt = v.CreatedAt
	s.chat = cloneChat(v.Content.ChatLog)
	if len(s.chat) == 0 {
		s.chat = []ChatEntry{s.entry(store.RoleAssistant, WelcomeMessage)}
	}
	s.setStatus(ctx, StatusReady)
	s.opts.Logger.Info("loaded map", "map", m.ID, "version", v.Number, "nodes", len(g.Nodes))
	return nil
}

func loadFailed(err error, mapID string) error {
	return errs.Wrap(errs.ErrCodePersistence, err, "load map %s", mapID)
}
