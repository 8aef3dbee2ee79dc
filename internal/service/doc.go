// Package service contains the user-facing use cases behind the bot's slash
// commands: the inventory of held creatures, the PC storage of stored ones,
// and the pokedex.
//
// Services coordinate the creature store, the cache and the species resolver.
// Expected conditions such as an unknown species, a full inventory or a
// creature the user does not own are returned as outcome values, not errors.
// Errors are reserved for infrastructure failures and are wrapped in
// ServiceError so callers can tell which operation failed.
//
// Cached summaries (inventory:full:<user> and pc:max-page:<user>) are
// invalidated by every operation that changes what they summarize.
package service
