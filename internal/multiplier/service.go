package multiplier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/pokepc/internal/cache"
	"github.com/phrazzld/pokepc/internal/config"
	"github.com/phrazzld/pokepc/internal/platform/logger"
)

// ErrStopped is returned by operations on a stopped Service.
var ErrStopped = errors.New("multiplier service stopped")

// Neutral is the multiplier of a user with no active rule.
const Neutral = 1.0

// callbackTimeout bounds cache work done from timer callbacks.
const callbackTimeout = 10 * time.Second

// StatusSource reads a user's current custom status text. It returns an
// empty string when the user has none.
type StatusSource interface {
	CustomStatus(ctx context.Context, userID string) (string, error)
}

// Service applies and reverts multipliers.
type Service struct {
	cache     *cache.Cache
	gate      *cache.Gate
	rules     map[config.MultiplierType][]config.MultiplierRule
	status    StatusSource
	scheduler Scheduler
	logger    *slog.Logger

	// rmw serializes read-modify-write of cached multipliers in this process.
	rmw sync.Mutex

	mu        sync.Mutex
	stopped   bool
	nextID    uint64
	reversals map[uint64]pendingReversal
	checks    map[string]pendingCheck
}

// pendingCheck is a status dwell check. The id lets a fired callback tell
// whether its check was cancelled and replaced in the meantime.
type pendingCheck struct {
	id    uint64
	timer Timer
}

type pendingReversal struct {
	timer  Timer
	userID string
	rule   config.MultiplierRule
}

// NewService creates a Service for rules. The status source may be nil, in
// which case status rules never apply.
func NewService(
	c *cache.Cache,
	rules map[string]config.MultiplierRule,
	status StatusSource,
	scheduler Scheduler,
	logger *slog.Logger,
) *Service {
	if c == nil {
		panic("cache cannot be nil")
	}
	if scheduler == nil {
		scheduler = RealScheduler{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	leveling := config.LevelingConfig{Multipliers: rules}
	byType := make(map[config.MultiplierType][]config.MultiplierRule)
	for _, t := range config.MultiplierTypes {
		if list := leveling.MultipliersOfType(t); len(list) > 0 {
			byType[t] = list
		}
	}

	return &Service{
		cache:     c,
		gate:      cache.NewGate(c.Store()),
		rules:     byType,
		status:    status,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "multiplier_service")),
		reversals: make(map[uint64]pendingReversal),
		checks:    make(map[string]pendingCheck),
	}
}

// Current returns the user's multiplier, Neutral when none is stored.
func (s *Service) Current(ctx context.Context, userID string) (float64, error) {
	value, found, err := cache.Get[float64](ctx, s.cache, cache.MultiplierKey(userID))
	if err != nil {
		return Neutral, err
	}
	if !found {
		return Neutral, nil
	}
	return value, nil
}

// Apply multiplies the user's multiplier by the rule's factor unless the
// user's cooldown is active. It reports whether the rule applied.
func (s *Service) Apply(ctx context.Context, userID string, rule config.MultiplierRule) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID),
		slog.String("rule", rule.Name))

	if s.isStopped() {
		return false, ErrStopped
	}

	delayKey := cache.MultiplierDelayKey(userID)
	var (
		proceed bool
		err     error
	)
	if cooldown := rule.Cooldown(); cooldown > 0 {
		proceed, err = s.gate.TryAcquire(ctx, delayKey, cooldown)
	} else {
		var active bool
		active, err = s.gate.IsDelayActive(ctx, delayKey)
		proceed = !active
	}
	if err != nil {
		return false, err
	}
	if !proceed {
		log.Debug("multiplier cooldown active")
		return false, nil
	}

	value, err := s.update(ctx, userID, func(current float64, _ bool) float64 {
		return current * rule.Multiplier
	})
	if err != nil {
		log.Error("failed to apply multiplier", slog.Any("error", err))
		if rule.Cooldown() > 0 {
			if relErr := s.cache.Invalidate(ctx, delayKey); relErr != nil {
				log.Warn("failed to release multiplier cooldown", slog.Any("error", relErr))
			}
		}
		return false, err
	}

	s.scheduleReversal(userID, rule)
	log.Info("multiplier applied",
		slog.Float64("factor", rule.Multiplier),
		slog.Float64("multiplier", value),
		slog.Duration("duration", rule.Duration()))
	return true, nil
}

// revert divides the user's multiplier by the rule's factor, never going
// below Neutral. A missing value is reset to Neutral.
func (s *Service) revert(ctx context.Context, userID string, rule config.MultiplierRule) error {
	value, err := s.update(ctx, userID, func(current float64, found bool) float64 {
		if !found {
			return Neutral
		}
		return max(current/rule.Multiplier, Neutral)
	})
	if err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("multiplier reverted",
		slog.String("user_id", userID),
		slog.String("rule", rule.Name),
		slog.Float64("multiplier", value))
	return nil
}

func (s *Service) update(ctx context.Context, userID string, fn func(current float64, found bool) float64) (float64, error) {
	s.rmw.Lock()
	defer s.rmw.Unlock()

	key := cache.MultiplierKey(userID)
	current, found, err := cache.Get[float64](ctx, s.cache, key)
	if err != nil {
		return 0, err
	}
	if !found {
		current = Neutral
	}
	next := fn(current, found)
	if err := s.cache.Set(ctx, key, next, cache.NoExpiry); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Service) scheduleReversal(userID string, rule config.MultiplierRule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	timer := s.scheduler.AfterFunc(rule.Duration(), func() {
		s.mu.Lock()
		_, pending := s.reversals[id]
		delete(s.reversals, id)
		s.mu.Unlock()
		if !pending {
			return
		}
		s.runReversal(userID, rule)
	})
	s.reversals[id] = pendingReversal{timer: timer, userID: userID, rule: rule}
}

func (s *Service) runReversal(userID string, rule config.MultiplierRule) {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()
	if err := s.revert(ctx, userID, rule); err != nil {
		s.logger.Error("failed to revert multiplier",
			slog.String("user_id", userID),
			slog.String("rule", rule.Name),
			slog.Any("error", err))
	}
}

// applyAll applies rules in order and returns how many applied.
func (s *Service) applyAll(ctx context.Context, userID string, rules []config.MultiplierRule) (int, error) {
	applied := 0
	var errs []error
	for _, rule := range rules {
		ok, err := s.Apply(ctx, userID, rule)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", rule.Name, err))
			continue
		}
		if ok {
			applied++
		}
	}
	return applied, errors.Join(errs...)
}

// OnMemberJoined applies the joinedGuild rules.
func (s *Service) OnMemberJoined(ctx context.Context, userID string) (int, error) {
	return s.applyAll(ctx, userID, s.rules[config.MultiplierJoinedGuild])
}

// OnBattle applies the wonBattle or lostBattle rules.
func (s *Service) OnBattle(ctx context.Context, userID string, won bool) (int, error) {
	kind := config.MultiplierLostBattle
	if won {
		kind = config.MultiplierWonBattle
	}
	return s.applyAll(ctx, userID, s.rules[kind])
}

// OnMessage applies the message rules whose text occurs in content,
// ignoring case.
func (s *Service) OnMessage(ctx context.Context, userID, content string) (int, error) {
	content = strings.ToLower(content)
	var matching []config.MultiplierRule
	for _, rule := range s.rules[config.MultiplierMessage] {
		if strings.Contains(content, strings.ToLower(rule.MessageText)) {
			matching = append(matching, rule)
		}
	}
	return s.applyAll(ctx, userID, matching)
}

func containsFold(text, sub string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(sub))
}

// OnStatus reacts to a custom status update. For every status rule whose
// text occurs in status a check is scheduled after the rule's dwell time,
// unless one is already pending; the check reads the status again and applies
// the rule only if it still matches. Pending checks of rules that no longer
// match are cancelled, so a status must be held for the whole dwell time
// without interruption. It returns the number of checks scheduled.
func (s *Service) OnStatus(ctx context.Context, userID, status string) int {
	if s.status == nil {
		return 0
	}
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0
	}

	scheduled := 0
	for _, rule := range s.rules[config.MultiplierStatus] {
		key := userID + "\x00" + rule.Name
		pending, ok := s.checks[key]

		if status == "" || !containsFold(status, rule.StatusText) {
			if ok {
				pending.timer.Stop()
				delete(s.checks, key)
				log.Debug("status multiplier check cancelled", slog.String("rule", rule.Name))
			}
			continue
		}
		if ok {
			continue
		}

		s.nextID++
		id := s.nextID
		timer := s.scheduler.AfterFunc(rule.StatusDwell(), func() {
			s.mu.Lock()
			current, ok := s.checks[key]
			live := ok && current.id == id
			if live {
				delete(s.checks, key)
			}
			s.mu.Unlock()
			if live {
				s.checkStatus(userID, rule)
			}
		})
		s.checks[key] = pendingCheck{id: id, timer: timer}
		scheduled++
		log.Debug("status multiplier check scheduled",
			slog.String("rule", rule.Name),
			slog.Duration("dwell", rule.StatusDwell()))
	}
	return scheduled
}

func (s *Service) checkStatus(userID string, rule config.MultiplierRule) {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	status, err := s.status.CustomStatus(ctx, userID)
	if err != nil {
		s.logger.Error("failed to read custom status",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return
	}
	if !containsFold(status, rule.StatusText) {
		s.logger.Debug("status changed before dwell time elapsed",
			slog.String("user_id", userID),
			slog.String("rule", rule.Name))
		return
	}
	if _, err := s.Apply(ctx, userID, rule); err != nil && !errors.Is(err, ErrStopped) {
		s.logger.Error("failed to apply status multiplier",
			slog.String("user_id", userID),
			slog.String("rule", rule.Name),
			slog.Any("error", err))
	}
}

func (s *Service) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Pending returns the number of scheduled reversals and status checks.
func (s *Service) Pending() (reversals, checks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reversals), len(s.checks)
}

// Stop cancels pending status checks and runs every pending reversal now, so
// that no multiplier outlives the process. Apply fails with ErrStopped
// afterwards.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true

	for key, check := range s.checks {
		check.timer.Stop()
		delete(s.checks, key)
	}

	var due []pendingReversal
	for id, r := range s.reversals {
		// A timer that already fired still finds its entry and reverts.
		if r.timer.Stop() {
			due = append(due, r)
			delete(s.reversals, id)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, r := range due {
		if err := s.revert(ctx, r.userID, r.rule); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
