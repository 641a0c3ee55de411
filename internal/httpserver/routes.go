package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware block
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Compress(5))

	// Rendered previews
	r.Get("/ambient/{file}", s.HandleRenderPreset)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.HandleHealth)

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", s.HandleListAssets)
			r.Get("/{id}", s.HandleGetAsset)

			// Protected routes (publisher role required)
			r.With(s.AuthMiddleware).Delete("/{id}", s.HandleDeleteAsset)
		})

		r.Route("/presets", func(r chi.Router) {
			r.Get("/", s.HandleListPresets)
			r.Get("/{name}", s.HandleGetPreset)

			// Protected routes (publisher role required)
			r.With(s.AuthMiddleware).Post("/{name}/publish", s.HandlePublishPreset)
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug(
			"Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
