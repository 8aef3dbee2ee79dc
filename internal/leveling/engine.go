package leveling

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/phrazzld/pokepc/internal/config"
	"github.com/phrazzld/pokepc/internal/domain"
	"github.com/phrazzld/pokepc/internal/formula"
)

// Kind is the activity an experience grant rewards.
type Kind string

const (
	KindMessage    Kind = "message"
	KindVoice      Kind = "voice"
	KindWonBattle  Kind = "wonBattle"
	KindLostBattle Kind = "lostBattle"
)

// Errors returned by the engine.
var (
	ErrUnknownKind       = errors.New("unknown experience kind")
	ErrInvalidMultiplier = errors.New("multiplier must be positive")
)

// Params are the formulas and ranges the engine applies.
type Params struct {
	// Gain maps each kind to its per-unit experience formula.
	Gain map[Kind]*formula.Expression
	// PerLevel is the experience needed to leave the current level.
	PerLevel *formula.Expression
	// AbilityMin and AbilityMax bound the points added to each stat on
	// level-up, inclusive.
	AbilityMin int64
	AbilityMax int64
}

// ParamsFromConfig builds Params from a loaded configuration.
func ParamsFromConfig(cfg *config.Config) *Params {
	return &Params{
		Gain: map[Kind]*formula.Expression{
			KindMessage:    cfg.Formulas.PerMessage,
			KindVoice:      cfg.Formulas.PerVoiceSecond,
			KindWonBattle:  cfg.Formulas.PerWonBattle,
			KindLostBattle: cfg.Formulas.PerLostBattle,
		},
		PerLevel:   cfg.Formulas.PerLevel,
		AbilityMin: int64(cfg.Leveling.AbilityPointsPerLevel.Min),
		AbilityMax: int64(cfg.Leveling.AbilityPointsPerLevel.Max),
	}
}

// Engine applies experience grants to creatures.
type Engine struct {
	params *Params
	// intN returns a uniform integer in [0, n).
	intN func(n int64) int64
}

// NewEngine creates an Engine drawing stat points from math/rand/v2.
func NewEngine(params *Params) *Engine {
	return NewEngineWithRand(params, rand.Int64N)
}

// NewEngineWithRand creates an Engine with a custom random source, for tests.
func NewEngineWithRand(params *Params, intN func(n int64) int64) *Engine {
	if params == nil || params.PerLevel == nil {
		panic("leveling params cannot be nil")
	}
	if intN == nil {
		panic("random source cannot be nil")
	}
	return &Engine{params: params, intN: intN}
}

func vars(c domain.Creature) formula.Vars {
	return formula.Vars{Level: c.Level, Experience: c.Experience}
}

// Gain is the experience a grant of amount units of kind adds to c, scaled by
// multiplier and rounded up. It may be negative.
func (e *Engine) Gain(c domain.Creature, kind Kind, amount, multiplier float64) (int64, error) {
	expr, ok := e.params.Gain[kind]
	if !ok || expr == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if multiplier <= 0 || math.IsNaN(multiplier) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidMultiplier, multiplier)
	}

	perUnit, err := expr.Eval(vars(c))
	if err != nil {
		return 0, fmt.Errorf("evaluating %s formula: %w", kind, err)
	}
	return formula.CeilInt(perUnit * amount * multiplier)
}

// Threshold is the experience at which c levels up.
func (e *Engine) Threshold(c domain.Creature) (int64, error) {
	threshold, err := e.params.PerLevel.Ceil(vars(c))
	if err != nil {
		return 0, fmt.Errorf("evaluating level formula: %w", err)
	}
	return threshold, nil
}

// Grant returns c after earning the experience for amount units of kind, and
// whether it leveled up. Experience never drops below zero. Reaching the
// threshold resets experience, raises the level by one and adds an
// independent random delta to every stat.
func (e *Engine) Grant(c domain.Creature, kind Kind, amount, multiplier float64) (domain.Creature, bool, error) {
	gain, err := e.Gain(c, kind, amount, multiplier)
	if err != nil {
		return c, false, err
	}

	c.Experience = max(c.Experience+gain, 0)

	threshold, err := e.Threshold(c)
	if err != nil {
		return c, false, err
	}
	if c.Experience < threshold {
		return c, false, nil
	}

	c.Experience = 0
	c.Level++
	c.Stats = c.Stats.Map(func(stat int64) int64 {
		return stat + e.statDelta()
	})
	return c, true, nil
}

// statDelta draws one level-up stat increase in [AbilityMin, AbilityMax].
// A misconfigured range never yields a negative delta.
func (e *Engine) statDelta() int64 {
	lo, hi := e.params.AbilityMin, e.params.AbilityMax
	delta := lo
	if hi > lo {
		delta += e.intN(hi - lo + 1)
	}
	return max(delta, 0)
}
