// Package config loads the bot's two configuration layers: process
// environment (secrets and connection settings) and the game configuration
// file (capacities, leveling formulas, multiplier rules). Both are validated
// at startup; an invalid configuration is fatal.
package config
