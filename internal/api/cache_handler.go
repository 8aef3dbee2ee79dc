package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/pokepc/internal/api/shared"
	"github.com/phrazzld/pokepc/internal/cache"
)

// CacheInspector lists cache entries by key pattern.
type CacheInspector interface {
	GetByPattern(ctx context.Context, pattern string) ([]cache.Entry, error)
}

// CacheEntriesResponse is the body of GET /debug/cache.
type CacheEntriesResponse struct {
	Pattern string        `json:"pattern"`
	Count   int           `json:"count"`
	Entries []cache.Entry `json:"entries"`
}

// CacheHandler exposes cache contents for debugging.
type CacheHandler struct {
	cache CacheInspector
}

// NewCacheHandler creates a CacheHandler.
func NewCacheHandler(c CacheInspector) *CacheHandler {
	if c == nil {
		panic("cache inspector cannot be nil")
	}
	return &CacheHandler{cache: c}
}

// Inspect handles GET /debug/cache?pattern=...
func (h *CacheHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "pattern query parameter is required")
		return
	}

	entries, err := h.cache.GetByPattern(r.Context(), pattern)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if entries == nil {
		entries = []cache.Entry{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CacheEntriesResponse{
		Pattern: pattern,
		Count:   len(entries),
		Entries: entries,
	})
}
