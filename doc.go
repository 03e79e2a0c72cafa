// Package gacha provides the HTTP client layer for the gacha-sub011 game
// backend. It wraps the standard net/http Client with the concerns every
// call site in the game shares:
//
//   - In-memory response caching with per-route TTLs and substring invalidation
//   - Request de-duplication (merges concurrent identical in-flight GETs)
//   - Retries with exponential backoff + jitter
//   - Rate limiting (token bucket) and circuit breaker
//   - Middleware chain for cross-cutting concerns (auth headers, tracing, etc.)
//   - Prometheus metrics and lightweight structured debug logging
//
// Cache keys are derived from method, URL, query parameters and a fingerprint
// of the caller's Authorization credential, so two logged-in accounts never
// observe each other's cached payloads. Mutating requests (POST/PUT/DELETE)
// always reach the network; call sites evict the reads a mutation staled via
// Client.Invalidate with a key substring, or clear everything on auth
// transitions.
//
// Typical usage:
//
//	client := gacha.New(
//	    gacha.WithMaxRetries(3),
//	    gacha.WithRouteTTLs(gacha.DefaultRouteTTLs(), 15*time.Second),
//	)
//	resp, err := client.Get(ctx, "https://api.example.com/characters/collection")
//	...
//	client.Invalidate("/characters/collection") // after a roll
//
// The typed game API (auth, rolls, minigames, admin tooling) lives in the api
// subpackage and drives the invalidation contract for every mutation.
package gacha
