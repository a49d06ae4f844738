package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"dispatch-route-service/internal/api/handlers"
	"dispatch-route-service/internal/ports"
	"dispatch-route-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(
	store ports.Store,
	seq ports.SequenceGenerator,
	apiKey string,
	log zerolog.Logger,
) http.Handler {
	routeHandler := &handlers.RouteHandler{
		Generator: services.NewGenerator(store, seq, log),
		Optimizer: services.NewOptimizer(store, log),
		Lifecycle: services.NewLifecycle(store, log),
		Store:     store,
		Log:       log,
	}
	stopHandler := &handlers.StopHandler{
		Tracker: services.NewStopTracker(store, log),
		Log:     log,
	}

	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, instrument(pattern, h))
	}

	handle("POST /api/routes/auto-generate", routeHandler.AutoGenerate)
	handle("POST /api/routes/{id}/optimize", routeHandler.Optimize)
	handle("PUT /api/routes/{id}/assign-driver", routeHandler.AssignDriver)
	handle("PUT /api/routes/{id}/reorder", routeHandler.Reorder)
	handle("GET /api/routes/{id}/stops", routeHandler.Stops)
	handle("PUT /api/routes/{id}/start", routeHandler.Start)
	handle("PUT /api/routes/{id}/complete", routeHandler.Complete)
	handle("PUT /api/routes/{id}/cancel", routeHandler.Cancel)
	handle("PUT /api/stops/{stopID}/status", stopHandler.UpdateStatus)

	mux.HandleFunc("GET /health", handlers.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	return requestIDMiddleware(loggingMiddleware(log, apiKeyMiddleware(apiKey, mux)))
}
