// Package domain contains the core entities of the bot: creatures with their
// level, experience, stats and ownership location, and the species details
// resolved from the remote species API. It is independent of storage,
// caching and Discord.
package domain
