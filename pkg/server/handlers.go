package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kobex777/anymaps/pkg/buildinfo"
	"github.com/kobex777/anymaps/pkg/canvas"
	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/geometry"
	"github.com/kobex777/anymaps/pkg/graph"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/render"
	"github.com/kobex777/anymaps/pkg/topology"
)

// SessionResponse is the body of every session route.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	canvas.Snapshot
}

// =============================================================================
// Service and maps
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": buildinfo.Get().Version,
	})
}

func (s *Server) listMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := s.store.ListMaps(r.Context(), s.opts.Session.Owner)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, maps)
}

func (s *Server) deleteMap(w http.ResponseWriter, r *http.Request) {
	mapID := chi.URLParam(r, "mapID")
	if err := errs.ValidateMapID(mapID); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.store.DeleteMap(r.Context(), mapID); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.dropMap(mapID)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Sessions
// =============================================================================

type openRequest struct {
	MapID string `json:"map_id"`
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	id, sess, err := s.open(r.Context(), req.MapID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, SessionResponse{SessionID: id, Snapshot: sess.Snapshot()})
}

// withSession resolves the session of the request and runs fn on it. A nil
// error answers with the session snapshot.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*canvas.Session) error) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.session(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := fn(sess); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, SessionResponse{SessionID: id, Snapshot: sess.Snapshot()})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(*canvas.Session) error { return nil })
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := s.drop(chi.URLParam(r, "sessionID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type generateRequest struct {
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *canvas.Session) error {
		return sess.Generate(r.Context(), req.Prompt, req.ImageBase64)
	})
}

type enhanceRequest struct {
	Prompt string `json:"prompt"`
	Mode   string `json:"mode,omitempty"`
}

func (s *Server) enhance(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *canvas.Session) error {
		return sess.Enhance(r.Context(), req.Prompt, req.Mode)
	})
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *canvas.Session) error {
		saved, err := sess.Save(r.Context(), false)
		if err == nil && !saved {
			return errs.New(errs.ErrCodeInvalidInput, "nothing to save")
		}
		return err
	})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *canvas.Session) error {
		sess.Reset()
		return nil
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts, err := renderOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts.Logger = s.opts.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.respondError(w, r, err)
		return
	}
	out, err := render.Render(r.Context(), sess.Graph(), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", opts.Format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func renderOptions(r *http.Request) (render.Options, error) {
	q := r.URL.Query()
	opts := render.Options{
		Format:    render.Format(q.Get("format")),
		Engine:    render.Engine(q.Get("engine")),
		Direction: layout.Direction(q.Get("direction")),
	}
	var err error
	if opts.Scale, err = floatParam(q.Get("scale")); err != nil {
		return opts, err
	}
	if opts.Padding, err = floatParam(q.Get("padding")); err != nil {
		return opts, err
	}
	if opts.Handles, err = boolParam(q.Get("handles")); err != nil {
		return opts, err
	}
	if opts.Pinned, err = boolParam(q.Get("pinned")); err != nil {
		return opts, err
	}
	return opts, nil
}

func floatParam(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid number %q", v)
	}
	return f, nil
}

func boolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid flag %q", v)
	}
	return b, nil
}

// =============================================================================
// Nodes
// =============================================================================

type addNodeRequest struct {
	Label string        `json:"label"`
	Kind  topology.Kind `json:"kind,omitempty"`
	X     float64       `json:"x"`
	Y     float64       `json:"y"`
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Kind == "" {
		req.Kind = topology.KindSecondary
	}
	s.withSession(w, r, func(sess *canvas.Session) error {
		_, err := sess.AddNode(r.Context(), req.Label, req.Kind, geometry.Point{X: req.X, Y: req.Y})
		return err
	})
}

func (s *Server) editNode(w http.ResponseWriter, r *http.Request) {
	var patch graph.NodePatch
	if err := decode(r, &patch); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *canvas.Session) error {
		return sess.EditNode(r.Context(), chi.URLParam(r, "nodeID"), patch)
	})
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *canvas.Session) error {
		return sess.DeleteNode(r.Context(), chi.URLParam(r, "nodeID"))
	})
}

func (s *Server) moveNode(w http.ResponseWriter, r *http.Request) {
	var p geometry.Point
	if err := decode(r, &p); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *canvas.Session) error {
		return sess.Move(r.Context(), chi.URLParam(r, "nodeID"), p)
	})
}

func (s *Server) resizeNode(w http.ResponseWriter, r *http.Request) {
	var size layout.Size
	if err := decode(r, &size); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *canvas.Session) error {
		return sess.Resize(r.Context(), chi.URLParam(r, "nodeID"), size)
	})
}

func (s *Server) focusNode(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	prompt, err := sess.FocusPrompt(chi.URLParam(r, "nodeID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"prompt": prompt})
}

// =============================================================================
// Edges
// =============================================================================

type connectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *canvas.Session) error {
		_, err := sess.Connect(r.Context(), req.Source, req.Target, req.Label)
		return err
	})
}

func (s *Server) reconnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *canvas.Session) error {
		return sess.Reconnect(r.Context(), chi.URLParam(r, "edgeID"), req.Source, req.Target)
	})
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *canvas.Session) error {
		return sess.Disconnect(r.Context(), chi.URLParam(r, "edgeID"))
	})
}

func (s *Server) dragMidpoint(w http.ResponseWriter, r *http.Request) {
	var m geometry.Point
	if err := decode(r, &m); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *canvas.Session) error {
		_, err := sess.DragMidpoint(r.Context(), chi.URLParam(r, "edgeID"), m)
		return err
	})
}

func (s *Server) clearControlPoint(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *canvas.Session) error {
		return sess.SetControlPoint(r.Context(), chi.URLParam(r, "edgeID"), nil)
	})
}
