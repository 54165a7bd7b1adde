package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.opts.Logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", s.health)
	router.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	router.Route("/api", func(r chi.Router) {
		r.Route("/maps", func(r chi.Router) {
			r.Get("/", s.listMaps)
			r.Delete("/{mapID}", s.deleteMap)
		})

		r.Post("/sessions", s.openSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.closeSession)
			r.Post("/generate", s.generate)
			r.Post("/enhance", s.enhance)
			r.Post("/save", s.save)
			r.Post("/reset", s.reset)
			r.Get("/render", s.render)

			r.Post("/nodes", s.addNode)
			r.Route("/nodes/{nodeID}", func(r chi.Router) {
				r.Patch("/", s.editNode)
				r.Delete("/", s.deleteNode)
				r.Put("/position", s.moveNode)
				r.Put("/size", s.resizeNode)
				r.Get("/focus", s.focusNode)
			})

			r.Post("/edges", s.connect)
			r.Route("/edges/{edgeID}", func(r chi.Router) {
				r.Patch("/", s.reconnect)
				r.Delete("/", s.disconnect)
				r.Put("/midpoint", s.dragMidpoint)
				r.Delete("/control-point", s.clearControlPoint)
			})
		})
	})

	return router
}
