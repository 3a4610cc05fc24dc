package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures the HTTP router.
type RouterOptions struct {
	Timeout time.Duration
	// Registry, when set, exposes prometheus metrics on /metrics.
	Registry *prometheus.Registry
}

// NewRouter builds the chi router with the standard middleware stack.
func NewRouter(h *Handlers, opts RouterOptions) chi.Router {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", h.Health)

	if opts.Registry != nil {
		r.Get("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}).ServeHTTP)
	}

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scrape", h.Scrape)
		r.Post("/search-and-scrape", h.SearchAndScrape)
		r.Get("/products", h.ListProducts)
		r.Get("/products/lookup", h.GetProduct)
	})

	return r
}
