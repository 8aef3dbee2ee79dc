// Package multiplier tracks per-user experience multipliers triggered by the
// configured rules.
//
// A user's multiplier is a scalar in the cache, 1 when absent. Applying a
// rule multiplies it and schedules the matching division after the rule's
// duration. A per-user cooldown blocks any rule from applying again until it
// lapses.
package multiplier
