// Package cache provides the bot's key-value cache: a Store abstraction with
// Redis and in-memory backends, a JSON read-through wrapper with sliding
// expiration, and an existence-only delay gate used for cooldowns.
package cache
