// Package bot is the Discord adapter. It owns the gateway session, turns
// gateway events into ActivityEvents, serves the slash commands and sends
// direct messages. Everything it shows users is plain text built in
// render.go.
package bot
