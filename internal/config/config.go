package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/phrazzld/pokepc/internal/formula"
)

// MultiplierType names the trigger that activates a multiplier rule.
type MultiplierType string

const (
	MultiplierStatus      MultiplierType = "status"
	MultiplierMessage     MultiplierType = "message"
	MultiplierWonBattle   MultiplierType = "wonBattle"
	MultiplierLostBattle  MultiplierType = "lostBattle"
	MultiplierJoinedGuild MultiplierType = "joinedGuild"
)

// MultiplierTypes lists every trigger type.
var MultiplierTypes = []MultiplierType{
	MultiplierStatus,
	MultiplierMessage,
	MultiplierWonBattle,
	MultiplierLostBattle,
	MultiplierJoinedGuild,
}

// Default values applied when the configuration file omits a setting.
const (
	DefaultInventorySize             = 3
	DefaultPokemonsPerPage           = 24
	DefaultExperienceGainCooldown    = 10
	DefaultExperiencePerMessage      = "1 / level * 10"
	DefaultExperiencePerVoiceSecond  = "1 / level"
	DefaultExperiencePerLevel        = "level * 100"
	DefaultExperiencePerWonBattle    = "level * 100"
	DefaultExperiencePerLostBattle   = "-1"
	DefaultAbilityPointsMin          = 1
	DefaultAbilityPointsMax          = 5
	DefaultRequiredMinStatusDuration = 86400
	DefaultMultiplierDuration        = 3600
)

// Config is the validated game configuration. It is read once at startup and
// treated as immutable afterwards.
type Config struct {
	Inventory InventoryConfig `mapstructure:"inventory"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Leveling  LevelingConfig  `mapstructure:"leveling"`

	// Formulas holds the compiled leveling expressions. Populated by Load.
	Formulas Formulas `mapstructure:"-" validate:"-"`
}

// InventoryConfig bounds how many creatures a user may hold.
type InventoryConfig struct {
	Size int `mapstructure:"size" validate:"min=1,max=25"`
}

// StorageConfig controls PC paging.
type StorageConfig struct {
	PokemonsPerPage int `mapstructure:"pokemonsPerPage" validate:"min=1,max=25"`
}

// LevelingConfig contains the experience formulas and multiplier rules.
type LevelingConfig struct {
	ExperienceGainCooldown             int                       `mapstructure:"experienceGainCooldown" validate:"min=1"`
	ExperiencePerMessage               string                    `mapstructure:"experiencePerMessage" validate:"required"`
	ExperiencePerSecondsInVoiceChannel string                    `mapstructure:"experiencePerSecondsInVoiceChannel" validate:"required"`
	ExperiencePerLevel                 string                    `mapstructure:"experiencePerLevel" validate:"required"`
	ExperiencePerWonBattle             string                    `mapstructure:"experiencePerWonBattle" validate:"required"`
	ExperiencePerLostBattle            string                    `mapstructure:"experiencePerLostBattle" validate:"required"`
	AbilityPointsPerLevel              AbilityPointsConfig       `mapstructure:"abilityPointsPerLevel"`
	Multipliers                        map[string]MultiplierRule `mapstructure:"multipliers" validate:"dive"`
}

// AbilityPointsConfig is the inclusive range of points added to each stat on
// level-up.
type AbilityPointsConfig struct {
	Min int `mapstructure:"min" validate:"min=1,max=255"`
	Max int `mapstructure:"max" validate:"min=1,max=255,gtefield=Min"`
}

// MultiplierRule describes one experience multiplier trigger.
type MultiplierRule struct {
	// Name is the rule's key in the multipliers map. Set by Load.
	Name string `mapstructure:"-"`

	Type                      MultiplierType `mapstructure:"type" validate:"required,oneof=status message wonBattle lostBattle joinedGuild"`
	StatusText                string         `mapstructure:"statusText" validate:"required_if=Type status"`
	RequiredMinStatusDuration int            `mapstructure:"requiredMinStatusDuration" validate:"min=0"`
	MessageText               string         `mapstructure:"messageText" validate:"required_if=Type message"`
	Multiplier                float64        `mapstructure:"multiplier" validate:"gt=0"`
	MultiplierDuration        int            `mapstructure:"multiplierDuration" validate:"min=0"`
	CooldownDuration          int            `mapstructure:"cooldownDuration" validate:"min=0"`
}

// Duration is how long the multiplier stays applied.
func (r MultiplierRule) Duration() time.Duration {
	return time.Duration(r.MultiplierDuration) * time.Second
}

// Cooldown is how long reapplication is blocked for the user. Zero disables it.
func (r MultiplierRule) Cooldown() time.Duration {
	return time.Duration(r.CooldownDuration) * time.Second
}

// StatusDwell is how long a custom status must be kept before the rule applies.
func (r MultiplierRule) StatusDwell() time.Duration {
	return time.Duration(r.RequiredMinStatusDuration) * time.Second
}

// GainCooldown is the minimum interval between two message experience grants
// for the same user.
func (l LevelingConfig) GainCooldown() time.Duration {
	return time.Duration(l.ExperienceGainCooldown) * time.Second
}

// MultipliersOfType returns the rules with the given trigger type ordered by
// name. Rules without a Name take their map key.
func (l LevelingConfig) MultipliersOfType(t MultiplierType) []MultiplierRule {
	var rules []MultiplierRule
	for name, rule := range l.Multipliers {
		if rule.Type != t {
			continue
		}
		if rule.Name == "" {
			rule.Name = name
		}
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Name < rules[j].Name })
	return rules
}

// Formulas are the compiled leveling expressions.
type Formulas struct {
	PerMessage     *formula.Expression
	PerVoiceSecond *formula.Expression
	PerLevel       *formula.Expression
	PerWonBattle   *formula.Expression
	PerLostBattle  *formula.Expression
}

// CompileFormulas compiles every leveling expression, reporting the first
// failure with the setting it came from.
func (l LevelingConfig) CompileFormulas() (Formulas, error) {
	var f Formulas
	sources := []struct {
		name string
		src  string
		dst  **formula.Expression
	}{
		{"experiencePerMessage", l.ExperiencePerMessage, &f.PerMessage},
		{"experiencePerSecondsInVoiceChannel", l.ExperiencePerSecondsInVoiceChannel, &f.PerVoiceSecond},
		{"experiencePerLevel", l.ExperiencePerLevel, &f.PerLevel},
		{"experiencePerWonBattle", l.ExperiencePerWonBattle, &f.PerWonBattle},
		{"experiencePerLostBattle", l.ExperiencePerLostBattle, &f.PerLostBattle},
	}
	for _, s := range sources {
		expr, err := formula.Compile(s.src)
		if err != nil {
			return Formulas{}, fmt.Errorf("leveling.%s: %w", s.name, err)
		}
		*s.dst = expr
	}
	return f, nil
}

// Default returns the configuration used when no file overrides anything.
func Default() *Config {
	cfg := &Config{
		Inventory: InventoryConfig{Size: DefaultInventorySize},
		Storage:   StorageConfig{PokemonsPerPage: DefaultPokemonsPerPage},
		Leveling: LevelingConfig{
			ExperienceGainCooldown:             DefaultExperienceGainCooldown,
			ExperiencePerMessage:               DefaultExperiencePerMessage,
			ExperiencePerSecondsInVoiceChannel: DefaultExperiencePerVoiceSecond,
			ExperiencePerLevel:                 DefaultExperiencePerLevel,
			ExperiencePerWonBattle:             DefaultExperiencePerWonBattle,
			ExperiencePerLostBattle:            DefaultExperiencePerLostBattle,
			AbilityPointsPerLevel: AbilityPointsConfig{
				Min: DefaultAbilityPointsMin,
				Max: DefaultAbilityPointsMax,
			},
			Multipliers: map[string]MultiplierRule{},
		},
	}
	formulas, err := cfg.Leveling.CompileFormulas()
	if err != nil {
		panic(fmt.Sprintf("config: default formulas do not compile: %v", err))
	}
	cfg.Formulas = formulas
	return cfg
}
