package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/phrazzld/pokepc/internal/api/shared"
	"github.com/phrazzld/pokepc/internal/cache"
	"github.com/phrazzld/pokepc/internal/events"
	"github.com/phrazzld/pokepc/internal/mocks"
	"github.com/phrazzld/pokepc/internal/service/auth"
	"github.com/phrazzld/pokepc/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "valid-token"

type recordingHandler struct {
	mu     sync.Mutex
	events []*events.ActivityEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *events.ActivityEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.events = append(h.events, event)
	return nil
}

type routerFixture struct {
	handler  http.Handler
	cache    *cache.Cache
	recorder *recordingHandler
}

func newRouterFixture(t *testing.T, checks map[string]Checker) *routerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := cache.New(cache.NewMemoryStore(), logger)
	emitter := events.NewInMemoryEventEmitter(logger)
	recorder := &recordingHandler{}
	emitter.RegisterHandler(recorder)

	tokens := &mocks.MockTokenValidator{
		ValidateFn: func(_ context.Context, token string) (*auth.Claims, error) {
			if token != validToken {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{Subject: "ops", Scope: auth.AdminScope}, nil
		},
	}

	return &routerFixture{
		handler: NewRouter(RouterDeps{
			Tokens: tokens,
			Cache:  c,
			Events: emitter,
			Checks: checks,
			Logger: logger,
		}),
		cache:    c,
		recorder: recorder,
	}
}

func (f *routerFixture) do(t *testing.T, method, target, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if authed {
		req.Header.Set("Authorization", "Bearer "+validToken)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		f := newRouterFixture(t, map[string]Checker{
			"database": CheckerFunc(func(context.Context) error { return nil }),
			"cache":    CheckerFunc(func(context.Context) error { return nil }),
		})

		rr := f.do(t, http.MethodGet, "/health", "", false)

		require.Equal(t, http.StatusOK, rr.Code)
		var body HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, map[string]string{"database": "ok", "cache": "ok"}, body.Checks)
	})

	t.Run("failing check", func(t *testing.T) {
		f := newRouterFixture(t, map[string]Checker{
			"database": CheckerFunc(func(context.Context) error {
				return errors.New("dial postgres://pokepc:hunter2@db/pokepc: refused")
			}),
			"cache": CheckerFunc(func(context.Context) error { return nil }),
		})

		rr := f.do(t, http.MethodGet, "/health", "", false)

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		var body HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "unavailable", body.Checks["database"])
		assert.NotContains(t, rr.Body.String(), "hunter2")
	})
}

func TestInspectCache(t *testing.T) {
	f := newRouterFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.cache.Set(ctx, cache.SpeciesKey("pikachu"), map[string]int{"id": 25}, cache.NoExpiry))
	require.NoError(t, f.cache.Set(ctx, cache.MaxPageKey("ash"), 2, cache.NoExpiry))

	t.Run("requires auth", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/debug/cache?pattern=*", "", false)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("lists matching entries", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/debug/cache?pattern=pokemon:*", "", true)

		require.Equal(t, http.StatusOK, rr.Code)
		var body CacheEntriesResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "pokemon:*", body.Pattern)
		require.Equal(t, 1, body.Count)
		assert.Equal(t, cache.SpeciesKey("pikachu"), body.Entries[0].Key)
		assert.JSONEq(t, `{"id":25}`, string(body.Entries[0].Value))
	})

	t.Run("no matches is an empty list", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/debug/cache?pattern=voice:*", "", true)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"pattern":"voice:*","count":0,"entries":[]}`, rr.Body.String())
	})

	t.Run("missing pattern", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/debug/cache", "", true)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed pattern", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/debug/cache?pattern=%5B", "", true)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid key pattern")
	})
}

func TestReportBattle(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		authed      bool
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "requires auth",
			body:       `{"winnerId":"1","loserId":"2"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:        "same user",
			body:        `{"winnerId":"1","loserId":"1"}`,
			authed:      true,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid loserId: must differ",
		},
		{
			name:        "missing winner",
			body:        `{"loserId":"2"}`,
			authed:      true,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid winnerId: required field",
		},
		{
			name:        "non numeric id",
			body:        `{"winnerId":"ash","loserId":"2"}`,
			authed:      true,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid winnerId: must be numeric",
		},
		{
			name:        "unknown field",
			body:        `{"winnerId":"1","loserId":"2","draw":true}`,
			authed:      true,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t, nil)

			rr := f.do(t, http.MethodPost, "/battles", tt.body, tt.authed)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantMessage != "" {
				var body shared.ErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, tt.wantMessage, body.Error)
			}
			assert.Empty(t, f.recorder.events)
		})
	}
}

func TestReportBattle_Queued(t *testing.T) {
	f := newRouterFixture(t, nil)

	rr := f.do(t, http.MethodPost, "/battles", `{"winnerId":"111","loserId":"222"}`, true)

	require.Equal(t, http.StatusAccepted, rr.Code)
	var body BattleResultResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "queued", body.Status)

	require.Len(t, f.recorder.events, 1)
	event := f.recorder.events[0]
	assert.Equal(t, body.EventID, event.ID.String())
	assert.Equal(t, events.BattleFinished, event.Type)
	assert.Equal(t, "111", event.UserID)

	var payload events.BattlePayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, events.BattlePayload{WinnerID: "111", LoserID: "222"}, payload)
}

func TestReportBattle_QueueFull(t *testing.T) {
	f := newRouterFixture(t, nil)
	f.recorder.err = fmt.Errorf("failed to submit event task: %w", task.ErrQueueFull)

	rr := f.do(t, http.MethodPost, "/battles", `{"winnerId":"111","loserId":"222"}`, true)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "Event queue is full")
}
