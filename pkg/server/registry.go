package server

import (
	"context"
	"maps"

	"github.com/google/uuid"

	"github.com/kobex777/anymaps/pkg/canvas"
	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/store"
)

func (s *Server) session(id string) (*canvas.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "session %q not found", id)
	}
	return sess, nil
}

// open returns the live session of mapID, or a new session loaded from the
// store. An empty mapID opens a blank session.
func (s *Server) open(ctx context.Context, mapID string) (string, *canvas.Session, error) {
	if mapID != "" {
		if err := errs.ValidateMapID(mapID); err != nil {
			return "", nil, err
		}
		if id, sess := s.findMap(mapID); sess != nil {
			return id, sess, nil
		}
	}

	sess, err := canvas.New(s.gen, s.store, s.opts.Session)
	if err != nil {
		return "", nil, err
	}
	if mapID != "" {
		if err := sess.Load(ctx, mapID); err != nil {
			if errs.Is(err, errs.ErrCodeMapNotFound) {
				return "", nil, store.MapNotFound(mapID)
			}
			return "", nil, err
		}
	}

	if mapID != "" {
		// Another request may have opened the map while this one loaded it.
		if id, other := s.findMap(mapID); other != nil {
			return id, other, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.sessions[id] = sess
	s.opts.Logger.Debug("opened session", "session", id, "map", mapID)
	return id, sess, nil
}

// snapshot copies the registry so sessions can be inspected without holding
// the registry lock while a session is busy generating.
func (s *Server) snapshot() map[string]*canvas.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.sessions)
}

func (s *Server) findMap(mapID string) (string, *canvas.Session) {
	for id, sess := range s.snapshot() {
		if sess.MapID() == mapID {
			return id, sess
		}
	}
	return "", nil
}

// drop removes a session after its pending saves finish.
func (s *Server) drop(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "session %q not found", id)
	}
	return sess.Wait()
}

// dropMap removes every session showing mapID.
func (s *Server) dropMap(mapID string) {
	for id, sess := range s.snapshot() {
		if sess.MapID() == mapID {
			s.mu.Lock()
			delete(s.sessions, id)
			s.mu.Unlock()
		}
	}
}
