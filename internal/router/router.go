// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// news portal category service. It organizes routes into public and admin
// groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsportal/internal/handlers"
	"newsportal/internal/middleware"
)

// Handlers bundles the handler groups served by the router.
type Handlers struct {
	Categories *handlers.Categories
	Redirects  *handlers.Redirects
	Purges     *handlers.Invalidator
	Public     *handlers.Public
}

// New creates and returns the configured Chi router. limiter throttles
// admin mutations and may be nil. pathPrefix is where category listings
// are mounted, e.g. "/category".
func New(h Handlers, limiter *middleware.RateLimiter, pathPrefix string) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	// Admin API. Authentication is enforced upstream of this service.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NoStore)
		if limiter != nil {
			r.Use(middleware.MutationsOnly(limiter.Middleware))
		}

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Categories.List)
			r.Get("/tree", h.Categories.Tree)
			r.Get("/{id}", h.Categories.Get)
			r.Post("/", h.Categories.Mutate)
		})

		r.Route("/redirects", func(r chi.Router) {
			r.Get("/", h.Redirects.List)
			r.Post("/", h.Redirects.Mutate)
		})

		r.Get("/cache-log", h.Purges.RecentPurges)
	})

	// Public category listings.
	r.Get(strings.TrimRight(pathPrefix, "/")+"/{slug}", h.Public.Category)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
