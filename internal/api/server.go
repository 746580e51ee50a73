// Package api exposes the spot pipeline and viewer sessions over HTTP for the
// browser map widget.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/kindness-map/internal/locate"
	"github.com/sells-group/kindness-map/internal/metrics"
	"github.com/sells-group/kindness-map/internal/session"
	"github.com/sells-group/kindness-map/internal/view"
	"github.com/sells-group/kindness-map/pkg/iplocate"
)

// Options configures the HTTP surface.
type Options struct {
	// DefaultZoom is used by the stateless spots endpoint when no zoom is given.
	DefaultZoom       int
	Cluster           bool
	ClusterZoomOffset int
	StaticDir         string
	CORSOrigins       []string
	// IPLocator backs IP geolocation for sessions. Nil disables the route.
	IPLocator iplocate.Client
}

// Server serves the kindness map API.
type Server struct {
	pipeline *view.Pipeline
	resolver *locate.Resolver
	sessions *session.Registry
	opts     Options
}

// NewServer creates a Server.
func NewServer(p *view.Pipeline, resolver *locate.Resolver, sessions *session.Registry, opts Options) *Server {
	return &Server{
		pipeline: p,
		resolver: resolver,
		sessions: sessions,
		opts:     opts,
	}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(accessLog)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/spots", s.handleSpots)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/geolocation", s.handleGeolocation)
			r.Post("/geolocation/ip", s.handleIPGeolocation)
			r.Post("/search", s.handleSearch)
			r.Put("/layer", s.handleSetLayer)
			r.Post("/layer/toggle", s.handleToggleLayer)
			r.Get("/markers.geojson", s.handleMarkers)
		})
	})

	if s.opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.opts.StaticDir)))
	}

	return r
}

// accessLog records one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
