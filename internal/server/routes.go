package server

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"

	"assetmap/cmd/web"
	"assetmap/config"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	if config.LogRequests() {
		logFormat := httplog.SchemaOTEL.Concise(true)
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			ReplaceAttr: logFormat.ReplaceAttr,
		}))
		r.Use(httplog.RequestLogger(logger, &httplog.Options{
			Level:         slog.LevelInfo,
			Schema:        httplog.SchemaOTEL,
			RecoverPanics: true,
		}))
	}
	r.Use(middleware.Heartbeat("/up"))

	s.MountStatic(r)

	if s.reload != nil {
		r.Get("/_reload", s.reload.Handler)
	}

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, 10*time.Second))

		r.Get("/", s.IndexHandler)
		r.Get("/importmap.json", s.ImportMapHandler)
	})

	return r
}

// IndexHandler renders the asset overview page against whatever state is
// current, so a dev rebuild shows up on the next request without a restart.
func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	state := s.state.Load()
	templ.Handler(web.Index(state.registry, state.imports, s.isLocal)).ServeHTTP(w, r)
}

// ImportMapHandler serves the bare import-map document. Pages inline the map
// themselves; this endpoint exists for inspection and for external consumers.
func (s *Server) ImportMapHandler(w http.ResponseWriter, r *http.Request) {
	state := s.state.Load()
	w.Header().Set("Content-Type", "application/importmap+json")
	w.Write(state.imports.JSON())
}
