package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func buildRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// UI/static
	r.Get("/", s.uiHandler)
	r.Get("/ui/accordion.js", s.uiHandler)
	r.Get("/ui/accordion.css", s.uiHandler)

	// Health/info
	r.HandleFunc("/healthz", s.healthzHandler)
	r.HandleFunc("/api/v1/server-info", serverInfoHandler)

	// Instance APIs
	r.Get("/api/v1/instances", s.listInstancesHandler)
	r.Route("/api/v1/instances/{id}", func(r chi.Router) {
		r.Get("/", s.instanceHandler)
		r.Post("/reload", s.reloadHandler)
		r.Post("/items/{index}/toggle", s.toggleHandler)
		r.Post("/items/{index}/hover", s.hoverHandler)
		r.Delete("/items/{index}/hover", s.cancelHoverHandler)
		r.Get("/search", s.searchHandler)
		r.Post("/chip", s.chipHandler)
		r.Get("/retry", s.retryStateHandler)
		r.Post("/retry/pause", s.retryPauseHandler)
		r.Post("/retry/resume", s.retryResumeHandler)
	})

	r.Post("/api/v1/viewed/refresh", s.viewedRefreshHandler)
	r.Get("/api/v1/media", s.mediaHandler)

	return r
}
