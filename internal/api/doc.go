// Package api is the admin HTTP surface of the bot: health checks, cache
// inspection, and battle result intake. Everything except /health requires
// an admin bearer token.
package api
