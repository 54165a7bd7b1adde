package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/kobex777/anymaps/pkg/canvas"
	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/generate"
	"github.com/kobex777/anymaps/pkg/store"
)

// Default option values.
const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultShutdownTimeout = 10 * time.Second
)

// Options configures a [Server].
type Options struct {
	// Addr is the listen address.
	Addr string `json:"addr"`

	// Session is applied to every session the server opens. Its Owner is the
	// owner listed by GET /api/maps.
	Session canvas.Options `json:"session"`

	// CORSOrigins lists allowed browser origins. Empty allows any origin.
	CORSOrigins []string `json:"cors_origins,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// Gatherer backs GET /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer `json:"-"`

	// Logger for request logging.
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults validates options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = []string{"*"}
	}
	if o.Gatherer == nil {
		o.Gatherer = prometheus.DefaultGatherer
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Session.Logger == nil {
		o.Session.Logger = o.Logger
	}
	if err := o.Session.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Server serves canvas sessions over HTTP.
type Server struct {
	gen   generate.Generator
	store store.Store
	opts  Options

	mu       sync.Mutex
	sessions map[string]*canvas.Session
}

// New creates a server. The store is shared by every session.
func New(gen generate.Generator, st store.Store, opts Options) (*Server, error) {
	if gen == nil {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "server requires a generator")
	}
	if st == nil {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "server requires a store")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Server{
		gen:      gen,
		store:    st,
		opts:     opts,
		sessions: make(map[string]*canvas.Session),
	}, nil
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and waits for pending saves.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "listen on %s", s.opts.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.opts.Logger.Info("serving", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
		defer cancel()
		s.opts.Logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return s.Close()
	})
	return g.Wait()
}

// Close waits for the pending saves of every session and drops them.
func (s *Server) Close() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*canvas.Session)
	s.mu.Unlock()

	var errList []error
	for _, sess := range sessions {
		if err := sess.Wait(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
