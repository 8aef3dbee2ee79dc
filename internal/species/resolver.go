// Package species resolves species details by name or id through the cache,
// distinguishing species that do not exist from transient lookup failures.
package species

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/pokepc/internal/cache"
	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/platform/logger"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound must be returned (possibly wrapped) by a Source when the
// species does not exist.
var ErrNotFound = errors.New("species not found")

// DefaultUnknownTTL is how long a negative lookup is remembered.
const DefaultUnknownTTL = time.Hour

// lookupTimeout bounds a shared lookup. It does not follow any single
// caller's context, since other callers may be waiting on the same result.
const lookupTimeout = 30 * time.Second

// Outcome classifies a resolution.
type Outcome int

const (
	// Found means Details is populated.
	Found Outcome = iota
	// Unknown means the species does not exist. It is a definitive answer.
	Unknown
	// Error means the lookup failed for another reason and may be retried.
	Error
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Unknown:
		return "unknown"
	case Error:
		return "error"
	default:
		return "outcome(" + strconv.Itoa(int(o)) + ")"
	}
}

// Result is the outcome of a resolution.
type Result struct {
	Outcome Outcome
	Details domain.SpeciesDetails
	// Err is set when Outcome is Error.
	Err error
}

// Source fetches species details from the remote API.
type Source interface {
	Details(ctx context.Context, nameOrID string) (domain.SpeciesDetails, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, nameOrID string) (domain.SpeciesDetails, error)

// Details implements Source.
func (f SourceFunc) Details(ctx context.Context, nameOrID string) (domain.SpeciesDetails, error) {
	return f(ctx, nameOrID)
}

// cachedLookup is what the resolver stores. Unknown lookups are stored as
// tombstones with a shorter lifetime.
type cachedLookup struct {
	Unknown bool                   `json:"unknown,omitempty"`
	Details *domain.SpeciesDetails `json:"details,omitempty"`
}

// Config tunes the resolver's cache lifetimes.
type Config struct {
	// TTL is the sliding lifetime of found species. Zero means cache.DefaultTTL.
	TTL time.Duration
	// UnknownTTL is the lifetime of negative lookups. Zero disables caching them.
	UnknownTTL time.Duration
}

// Resolver is the cached wrapper around a Source.
type Resolver struct {
	source     Source
	cache      *cache.Cache
	ttl        time.Duration
	unknownTTL time.Duration
	group      singleflight.Group
	logger     *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(source Source, c *cache.Cache, cfg Config, logger *slog.Logger) *Resolver {
	if source == nil {
		panic("species source cannot be nil")
	}
	if c == nil {
		panic("cache cannot be nil")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = cache.DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		source:     source,
		cache:      c,
		ttl:        cfg.TTL,
		unknownTTL: cfg.UnknownTTL,
		logger:     logger.With(slog.String("component", "species_resolver")),
	}
}

// NormalizeLookupKey lowercases and trims a name or id and escapes it for use
// as a URL path segment.
func NormalizeLookupKey(nameOrID string) string {
	return url.PathEscape(strings.ToLower(strings.TrimSpace(nameOrID)))
}

// errUnknown carries a negative lookup through GetOrCompute so it can be
// cached as a tombstone by the caller.
var errUnknown = errors.New("unknown species")

// Resolve looks a species up by name or id.
func (r *Resolver) Resolve(ctx context.Context, nameOrID string) Result {
	key := NormalizeLookupKey(nameOrID)
	// Dot segments would resolve to the API index instead of a resource.
	if key == "" || key == "." || key == ".." {
		return Result{Outcome: Unknown}
	}
	log := logger.FromContextOrDefault(ctx, r.logger).With(slog.String("lookup_key", key))

	v, err, _ := r.group.Do(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return r.lookup(lookupCtx, key)
	})
	if err != nil {
		log.Error("species resolution failed", slog.Any("error", err))
		return Result{Outcome: Error, Err: err}
	}

	entry := v.(cachedLookup)
	if entry.Unknown || entry.Details == nil {
		log.Debug("species unknown")
		return Result{Outcome: Unknown}
	}
	return Result{Outcome: Found, Details: *entry.Details}
}

// ResolveCreature resolves the species of a stored creature.
func (r *Resolver) ResolveCreature(ctx context.Context, c domain.Creature) Result {
	return r.Resolve(ctx, strconv.FormatInt(c.SpeciesID, 10))
}

func (r *Resolver) lookup(ctx context.Context, key string) (cachedLookup, error) {
	cacheKey := cache.SpeciesKey(key)

	// Tombstones keep their own lifetime; GetOrCompute would slide them to r.ttl.
	if cached, ok, err := cache.Get[cachedLookup](ctx, r.cache, cacheKey); err == nil && ok && cached.Unknown {
		return cached, nil
	}

	entry, err := cache.GetOrCompute(ctx, r.cache, cacheKey, r.ttl,
		func(ctx context.Context) (cachedLookup, error) {
			details, err := r.source.Details(ctx, key)
			if errors.Is(err, ErrNotFound) {
				return cachedLookup{}, errUnknown
			}
			if err != nil {
				return cachedLookup{}, fmt.Errorf("fetching species %s: %w", key, err)
			}
			return cachedLookup{Details: &details}, nil
		})
	if errors.Is(err, errUnknown) {
		tombstone := cachedLookup{Unknown: true}
		if r.unknownTTL > 0 {
			if setErr := r.cache.Set(ctx, cacheKey, tombstone, r.unknownTTL); setErr != nil {
				logger.FromContextOrDefault(ctx, r.logger).Warn("failed to cache unknown species",
					slog.String("lookup_key", key),
					slog.Any("error", setErr))
			}
		}
		return tombstone, nil
	}
	if err != nil {
		return cachedLookup{}, err
	}
	return entry, nil
}
