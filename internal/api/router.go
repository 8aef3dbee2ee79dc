package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/pokepc/internal/api/middleware"
	"github.com/phrazzld/pokepc/internal/events"
)

// RouterDeps are the collaborators of the admin router.
type RouterDeps struct {
	Tokens middleware.TokenValidator
	Cache  CacheInspector
	Events events.EventEmitter
	// Checks are probed by /health, keyed by the name reported.
	Checks map[string]Checker
	Logger *slog.Logger
}

// NewRouter builds the admin HTTP handler.
func NewRouter(deps RouterDeps) http.Handler {
	authMiddleware := middleware.NewAuthMiddleware(deps.Tokens)
	healthHandler := NewHealthHandler(deps.Checks)
	cacheHandler := NewCacheHandler(deps.Cache)
	battleHandler := NewBattleHandler(deps.Events)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Trace(deps.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", healthHandler.Health)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/debug/cache", cacheHandler.Inspect)
		r.Post("/battles", battleHandler.ReportResult)
	})

	return r
}
