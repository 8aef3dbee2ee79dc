package leveling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/pokepc/internal/cache"
	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/platform/logger"
	"github.com/phrazzld/pokepc/internal/store"
)

// Notifier delivers a direct message to a user.
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, userID, message string) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, userID, message string) error {
	return f(ctx, userID, message)
}

// MultiplierSource reports a user's current experience multiplier.
type MultiplierSource interface {
	Current(ctx context.Context, userID string) (float64, error)
}

// MaxVoiceSession bounds how long a recorded voice join is kept. A leave
// after that is ignored.
const MaxVoiceSession = 24 * time.Hour

// Deps are the collaborators of a Service.
type Deps struct {
	Creatures store.CreatureStore
	// DB, when set, makes each grant cycle one transaction.
	DB          *sql.DB
	Engine      *Engine
	Cache       *cache.Cache
	Multipliers MultiplierSource
	Notifier    Notifier
	// HeldLimit caps how many held creatures one cycle updates.
	HeldLimit int
	// Cooldown is the minimum interval between message grants per user.
	Cooldown time.Duration
	Logger   *slog.Logger
}

// Service grants experience to the creatures users hold.
type Service struct {
	creatures   store.CreatureStore
	db          *sql.DB
	engine      *Engine
	cache       *cache.Cache
	gate        *cache.Gate
	multipliers MultiplierSource
	notifier    Notifier
	heldLimit   int
	cooldown    time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewService creates a Service. It returns an error if a required
// dependency is missing.
func NewService(deps Deps) (*Service, error) {
	if deps.Creatures == nil {
		return nil, domain.NewValidationError("creatures", "cannot be nil")
	}
	if deps.Engine == nil {
		return nil, domain.NewValidationError("engine", "cannot be nil")
	}
	if deps.Cache == nil {
		return nil, domain.NewValidationError("cache", "cannot be nil")
	}
	if deps.HeldLimit < 1 {
		return nil, domain.NewValidationError("heldLimit", "must be at least 1")
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		creatures:   deps.Creatures,
		db:          deps.DB,
		engine:      deps.Engine,
		cache:       deps.Cache,
		gate:        cache.NewGate(deps.Cache.Store()),
		multipliers: deps.Multipliers,
		notifier:    deps.Notifier,
		heldLimit:   deps.HeldLimit,
		cooldown:    deps.Cooldown,
		now:         time.Now,
		logger:      log.With(slog.String("component", "leveling_service")),
	}, nil
}

// Engine exposes the engine, for threshold display.
func (s *Service) Engine() *Engine {
	return s.engine
}

// Report summarizes one grant cycle.
type Report struct {
	Updated   int
	LeveledUp []domain.Creature
}

// LevelUpMessage is the notification sent to the owner of c after it
// leveled up.
func LevelUpMessage(c domain.Creature) string {
	return fmt.Sprintf(
		"Your pokemon No. %d (#%d) has leveled up to level %d! You can check its new stats with /pc storage view pokemon-id:%d",
		c.ID, c.SpeciesID, c.Level, c.ID)
}

// OnMessage grants message experience unless the user's cooldown is active.
// It reports whether a grant cycle ran.
func (s *Service) OnMessage(ctx context.Context, userID string) (bool, error) {
	acquired, err := s.gate.TryAcquire(ctx, cache.ExperienceDelayKey(userID), s.cooldown)
	if err != nil {
		return false, err
	}
	if !acquired {
		logger.FromContextOrDefault(ctx, s.logger).Debug("experience cooldown active",
			slog.String("user_id", userID))
		return false, nil
	}

	if _, err := s.GrantHeld(ctx, userID, KindMessage, 1); err != nil {
		return true, err
	}
	return true, nil
}

// OnBattle grants battle experience to the winner and the loser.
func (s *Service) OnBattle(ctx context.Context, winnerID, loserID string) error {
	_, wonErr := s.GrantHeld(ctx, winnerID, KindWonBattle, 1)
	_, lostErr := s.GrantHeld(ctx, loserID, KindLostBattle, 1)
	return errors.Join(wonErr, lostErr)
}

// GrantHeld applies amount units of kind to every creature userID holds,
// scaled by the user's current multiplier, and notifies the owner of each
// level-up once the updates are persisted.
func (s *Service) GrantHeld(ctx context.Context, userID string, kind Kind, amount float64) (Report, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID),
		slog.String("kind", string(kind)))

	multiplier := s.currentMultiplier(ctx, log, userID)

	var report Report
	apply := func(ctx context.Context, creatures store.CreatureStore) error {
		report = Report{}
		held, err := creatures.Find(ctx, store.AtLocation(domain.HeldBy(userID)), store.Page{Limit: s.heldLimit})
		if err != nil {
			return err
		}

		for _, c := range held {
			updated, leveled, err := s.engine.Grant(c, kind, amount, multiplier)
			if err != nil {
				return fmt.Errorf("granting experience to creature %d: %w", c.ID, err)
			}
			if err := creatures.UpdateProgress(ctx, &updated); err != nil {
				return err
			}
			report.Updated++
			if leveled {
				report.LeveledUp = append(report.LeveledUp, updated)
			}
		}
		return nil
	}

	var err error
	if s.db != nil {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			return apply(ctx, s.creatures.WithTx(tx))
		})
	} else {
		err = apply(ctx, s.creatures)
	}
	if err != nil {
		log.Error("failed to grant experience", slog.Any("error", err))
		return Report{}, err
	}

	log.Debug("experience granted",
		slog.Int("updated", report.Updated),
		slog.Int("leveled_up", len(report.LeveledUp)),
		slog.Float64("multiplier", multiplier))

	for _, c := range report.LeveledUp {
		s.notify(ctx, log, userID, c)
	}
	return report, nil
}

func (s *Service) currentMultiplier(ctx context.Context, log *slog.Logger, userID string) float64 {
	if s.multipliers == nil {
		return 1
	}
	m, err := s.multipliers.Current(ctx, userID)
	if err != nil || m <= 0 {
		log.Warn("using neutral multiplier", slog.Any("error", err), slog.Float64("multiplier", m))
		return 1
	}
	return m
}

func (s *Service) notify(ctx context.Context, log *slog.Logger, userID string, c domain.Creature) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, LevelUpMessage(c)); err != nil {
		log.Warn("failed to send level-up notification",
			slog.Int64("creature_id", c.ID),
			slog.Any("error", err))
	}
}

// OnVoiceJoin records when the user became active in a voice channel.
func (s *Service) OnVoiceJoin(ctx context.Context, userID string) error {
	return s.cache.Set(ctx, cache.VoiceJoinKey(userID), s.now().UnixMilli(), MaxVoiceSession)
}

// OnVoiceLeave grants voice experience for the seconds since the recorded
// join. Without a recorded join it does nothing.
func (s *Service) OnVoiceLeave(ctx context.Context, userID string) (Report, error) {
	key := cache.VoiceJoinKey(userID)
	joinedAt, found, err := cache.Get[int64](ctx, s.cache, key)
	if err != nil {
		return Report{}, err
	}
	if !found {
		return Report{}, nil
	}
	if err := s.cache.Invalidate(ctx, key); err != nil {
		return Report{}, err
	}

	seconds := s.now().Sub(time.UnixMilli(joinedAt)).Truncate(time.Second).Seconds()
	if seconds <= 0 {
		return Report{}, nil
	}
	return s.GrantHeld(ctx, userID, KindVoice, seconds)
}
