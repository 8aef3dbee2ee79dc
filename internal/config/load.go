package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "embed"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

//go:embed configuration.schema.json
var schemaJSON []byte

const schemaURL = "configuration.schema.json"

var configSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("config: adding schema resource: %v", err))
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("config: compiling schema: %v", err))
	}
	return schema
}

// Load reads the game configuration file at path. A missing file yields the
// defaults; any structural, semantic, or formula error is fatal and wraps
// ErrInvalid.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LoadBytes(nil)
		}
		return nil, fmt.Errorf("reading configuration %s: %w", path, err)
	}
	cfg, err := LoadBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadBytes parses and validates a YAML configuration document.
func LoadBytes(raw []byte) (*Config, error) {
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("%w: parsing: %v", ErrInvalid, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding: %v", ErrInvalid, err)
	}

	// Viper lowercases keys, so rule names come from the raw document.
	names := ruleNames(raw)
	rules := make(map[string]MultiplierRule, len(cfg.Leveling.Multipliers))
	for key, rule := range cfg.Leveling.Multipliers {
		if name, ok := names[key]; ok {
			rule.Name = name
		} else {
			rule.Name = key
		}
		if rule.MultiplierDuration == 0 {
			rule.MultiplierDuration = DefaultMultiplierDuration
		}
		if rule.Type == MultiplierStatus && rule.RequiredMinStatusDuration == 0 {
			rule.RequiredMinStatusDuration = DefaultRequiredMinStatusDuration
		}
		rules[rule.Name] = rule
	}
	cfg.Leveling.Multipliers = rules

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	formulas, err := cfg.Leveling.CompileFormulas()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.Formulas = formulas

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("inventory.size", DefaultInventorySize)
	v.SetDefault("storage.pokemonsPerPage", DefaultPokemonsPerPage)
	v.SetDefault("leveling.experienceGainCooldown", DefaultExperienceGainCooldown)
	v.SetDefault("leveling.experiencePerMessage", DefaultExperiencePerMessage)
	v.SetDefault("leveling.experiencePerSecondsInVoiceChannel", DefaultExperiencePerVoiceSecond)
	v.SetDefault("leveling.experiencePerLevel", DefaultExperiencePerLevel)
	v.SetDefault("leveling.experiencePerWonBattle", DefaultExperiencePerWonBattle)
	v.SetDefault("leveling.experiencePerLostBattle", DefaultExperiencePerLostBattle)
	v.SetDefault("leveling.abilityPointsPerLevel.min", DefaultAbilityPointsMin)
	v.SetDefault("leveling.abilityPointsPerLevel.max", DefaultAbilityPointsMax)
}

// validateSchema checks the raw document against the embedded JSON Schema.
func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: parsing yaml: %v", ErrInvalid, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	// Round-trip through JSON so the validator sees plain JSON values.
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: configuration is not representable as JSON: %v", ErrInvalid, err)
	}
	var value any
	if err := json.Unmarshal(encoded, &value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := configSchema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ruleNames maps lowercased multiplier keys back to their original spelling.
func ruleNames(raw []byte) map[string]string {
	var doc struct {
		Leveling struct {
			Multipliers map[string]yaml.Node `yaml:"multipliers"`
		} `yaml:"leveling"`
	}
	names := map[string]string{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return names
	}
	for name := range doc.Leveling.Multipliers {
		names[strings.ToLower(name)] = name
	}
	return names
}
