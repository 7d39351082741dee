// Package api assembles the HTTP surface: route table, middleware chain, and
// the dependency wiring between handlers and domain services.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/eventmanager/server/internal/api/handlers"
	"github.com/eventmanager/server/internal/api/middleware"
	"github.com/eventmanager/server/internal/auth"
	"github.com/eventmanager/server/internal/config"
	"github.com/eventmanager/server/internal/domain/events"
	"github.com/eventmanager/server/internal/metrics"
	"github.com/eventmanager/server/internal/storage/postgres"
)

// Dependencies carries everything the router needs. The pool may be nil in
// tests that inject their own repositories.
type Dependencies struct {
	Config       config.Config
	Logger       zerolog.Logger
	Pool         *pgxpool.Pool
	AuthService  *auth.Service
	Events       *events.Service
	TokenIssuer  *auth.TokenIssuer
	LoginLimiter *middleware.LoginRateLimiter
	Version      string
}

// NewDependencies wires the default production graph on top of the pool.
func NewDependencies(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, version string) (Dependencies, error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return Dependencies{}, err
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.AccessTokenLifetime)
	authService := auth.NewService(issuer, repo.Auth(), cfg.Auth.RefreshTokenLifetime, logger)
	eventsService := events.NewService(repo.Events(), logger)

	return Dependencies{
		Config:       cfg,
		Logger:       logger,
		Pool:         pool,
		AuthService:  authService,
		Events:       eventsService,
		TokenIssuer:  issuer,
		LoginLimiter: middleware.NewLoginRateLimiter(cfg.RateLimit),
		Version:      version,
	}, nil
}

// NewRouter builds the full handler chain. Authorization endpoints are rate
// limited per client; event endpoints require a valid access token.
func NewRouter(deps Dependencies) http.Handler {
	env := deps.Config.Environment

	authHandler := handlers.NewAuthorizationHandler(deps.AuthService, env)
	eventsHandler := handlers.NewEventsHandler(deps.Events, env)
	health := handlers.NewHealthChecker(deps.Pool, deps.Version)

	limiter := deps.LoginLimiter
	if limiter == nil {
		limiter = middleware.NewLoginRateLimiter(deps.Config.RateLimit)
	}
	requireAuth := middleware.BearerAuth(deps.TokenIssuer, env)

	mux := http.NewServeMux()
	mux.Handle("/healthz", health.Liveness())
	mux.Handle("/readyz", health.Readiness())
	mux.Handle("/metrics", metrics.Handler())

	mux.Handle("/api/authorization/login", methodMux(map[string]http.Handler{
		http.MethodPost: limiter.Middleware(http.HandlerFunc(authHandler.Login)),
	}))
	mux.Handle("/api/authorization/refresh", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Refresh),
	}))
	mux.Handle("/api/authorization/logout", methodMux(map[string]http.Handler{
		http.MethodPost: requireAuth(http.HandlerFunc(authHandler.Logout)),
	}))

	mux.Handle("/api/event", methodMux(map[string]http.Handler{
		http.MethodGet:  requireAuth(http.HandlerFunc(eventsHandler.List)),
		http.MethodPost: requireAuth(http.HandlerFunc(eventsHandler.Create)),
		http.MethodPut:  requireAuth(http.HandlerFunc(eventsHandler.UpdateByBody)),
	}))
	mux.Handle("/api/event/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    requireAuth(http.HandlerFunc(eventsHandler.Get)),
		http.MethodPut:    requireAuth(http.HandlerFunc(eventsHandler.Update)),
		http.MethodDelete: requireAuth(http.HandlerFunc(eventsHandler.Delete)),
	}))

	var handler http.Handler = mux
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.Recovery(env)(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
