package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/platform/logger"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public PokeAPI endpoint.
const DefaultBaseURL = "https://pokeapi.co/api/v2/"

// ErrNotFound is returned when PokeAPI answers 404 for a lookup.
var ErrNotFound = errors.New("pokeapi: not found")

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pokeapi: %s: unexpected status %d", e.Path, e.StatusCode)
}

// Config holds the client settings.
type Config struct {
	BaseURL string
	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client talks to PokeAPI. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a Client. A nil httpClient uses a client with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("pokeapi: invalid base url %q: %w", cfg.BaseURL, err)
	}

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: parsed,
		http:    httpClient,
		limiter: limiter,
		logger:  logger.With(slog.String("component", "pokeapi")),
	}, nil
}

type namedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Pokemon is the subset of the /pokemon resource the bot uses.
type Pokemon struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Species   namedResource `json:"species"`
	Abilities []struct {
		Ability namedResource `json:"ability"`
	} `json:"abilities"`
	Types []struct {
		Slot int           `json:"slot"`
		Type namedResource `json:"type"`
	} `json:"types"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
	Stats []struct {
		BaseStat int64         `json:"base_stat"`
		Stat     namedResource `json:"stat"`
	} `json:"stats"`
}

// PokemonSpecies is the subset of the /pokemon-species resource the bot uses.
type PokemonSpecies struct {
	Name        string          `json:"name"`
	CaptureRate int64           `json:"capture_rate"`
	Habitat     *namedResource  `json:"habitat"`
	EggGroups   []namedResource `json:"egg_groups"`
	Color       namedResource   `json:"color"`
}

// Pokemon fetches pokemon/{nameOrID}. nameOrID must already be path-escaped.
func (c *Client) Pokemon(ctx context.Context, nameOrID string) (*Pokemon, error) {
	var p Pokemon
	if err := c.get(ctx, "pokemon/"+nameOrID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PokemonSpecies fetches pokemon-species/{name}.
func (c *Client) PokemonSpecies(ctx context.Context, name string) (*PokemonSpecies, error) {
	var s PokemonSpecies
	if err := c.get(ctx, "pokemon-species/"+url.PathEscape(name), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Details fetches a pokemon and its species and flattens them.
func (c *Client) Details(ctx context.Context, nameOrID string) (domain.SpeciesDetails, error) {
	p, err := c.Pokemon(ctx, nameOrID)
	if err != nil {
		return domain.SpeciesDetails{}, err
	}
	s, err := c.PokemonSpecies(ctx, p.Species.Name)
	if err != nil {
		return domain.SpeciesDetails{}, err
	}
	return flatten(p, s), nil
}

func flatten(p *Pokemon, s *PokemonSpecies) domain.SpeciesDetails {
	d := domain.SpeciesDetails{
		ID:          p.ID,
		Name:        capitalize(p.Name),
		SpriteURL:   p.Sprites.FrontDefault,
		Species:     capitalize(s.Name),
		Color:       capitalize(s.Color.Name),
		CaptureRate: s.CaptureRate,
	}
	if s.Habitat != nil {
		habitat := capitalize(s.Habitat.Name)
		d.Habitat = &habitat
	}
	for _, a := range p.Abilities {
		d.Abilities = append(d.Abilities, capitalize(a.Ability.Name))
	}
	for _, t := range p.Types {
		d.Types = append(d.Types, capitalize(t.Type.Name))
	}
	for _, g := range s.EggGroups {
		d.EggGroups = append(d.EggGroups, capitalize(g.Name))
	}
	for _, st := range p.Stats {
		d.Stats = append(d.Stats, domain.BaseStat{Name: capitalize(st.Stat.Name), Stat: st.BaseStat})
	}
	return d
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pokeapi: waiting for rate limiter: %w", err)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("pokeapi: invalid path %q: %w", path, err)
	}
	target := c.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("pokeapi: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log := logger.FromContextOrDefault(ctx, c.logger)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("pokeapi: GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug("pokeapi request completed",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Path: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("pokeapi: decoding %s: %w", path, err)
	}
	return nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
