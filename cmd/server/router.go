package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures the monitoring HTTP surface. Every endpoint is
// read-only; all writes to the notification log happen through the consumer
// and the reconciler.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", app.monitoring.Health)

	r.Route("/monitoring", func(r chi.Router) {
		r.Get("/stats", app.monitoring.Stats)
		r.Get("/events", app.monitoring.Events)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
		app.registry,
		promhttp.HandlerOpts{Registry: app.registry},
	))

	return r
}
