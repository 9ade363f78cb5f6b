package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"peoplenet/infrastructure/di"
	"peoplenet/interfaces/http/rest/handlers"
	"peoplenet/interfaces/http/rest/middleware"
	"peoplenet/pkg/common"
	pkgerrors "peoplenet/pkg/errors"
)

const readyTimeout = 3 * time.Second

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	errors    *pkgerrors.ErrorHandler
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		errors:    pkgerrors.NewErrorHandler(container.Logger, container.Config.IsDevelopment()),
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	c := rt.container
	cfg := c.Config
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errors.Middleware)
	var observer middleware.HTTPObserver
	if cfg.EnableMetrics {
		observer = c.Metrics
	}
	router.Use(middleware.Logger(rt.logger, observer))
	if cfg.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	if cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Location", "Retry-After"},
			AllowCredentials: !containsWildcard(cfg.AllowedOrigins),
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if cfg.EnableMetrics {
		router.Handle("/metrics", c.Metrics.Handler())
	}

	router.Route("/api/v2", func(r chi.Router) {
		r.Use(middleware.Authenticate(middleware.AuthConfig{
			JWT:           c.JWT,
			DefaultUserID: cfg.DefaultUserID,
			TrustGateway:  cfg.IsLambda,
			Limiter:       c.UserLimiter,
			UserRateLimit: cfg.UserRateLimit,
			Errors:        rt.errors,
			Logger:        rt.logger,
		}))

		people := handlers.NewPeopleHandler(c.CommandBus, c.QueryBus, rt.errors, rt.logger)
		r.Route("/people", func(r chi.Router) {
			r.Get("/", people.ListPeople)
			r.Post("/", people.CreatePerson)
			r.Get("/{personID}", people.GetPerson)
			r.Patch("/{personID}", people.UpdatePerson)
			r.Delete("/{personID}", people.DeletePerson)
		})

		network := handlers.NewNetworkHandler(c.QueryBus, rt.errors, rt.logger)
		r.Route("/network", func(r chi.Router) {
			r.Get("/graph", network.GetGraph)
			r.Get("/path/{personID}", network.GetPath)
			r.Get("/issues", network.GetIssues)
		})

		cities := handlers.NewCityHandler(c.QueryBus, c.Cities, rt.errors, rt.logger)
		r.Route("/cities", func(r chi.Router) {
			r.Get("/search", cities.Search)
			r.Get("/cached", cities.Cached)
			r.Get("/usage", cities.Usage)
			r.Delete("/cache", cities.ClearCache)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports whether storage and the city cache answer
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := rt.container.Ready(ctx); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		rt.errors.Handle(w, r, pkgerrors.NewUnavailableError("peoplenet").WithCause(err))
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}
