// Package middleware holds the fiber middlewares mounted by the tabletop API.
//
// Each constructor returns a server.Middleware with a fixed priority; higher
// runs earlier:
//
//   - Recovery (1000) turns panics into internal errors
//   - Tracing (900) opens the request span and stamps X-Trace-ID
//   - Timeout (800) bounds the request context
//   - MetaInject (700) stores client address and service identity
//   - Logger (500) writes one line per request
//   - ErrorHandler (400) renders the JSON error body
//   - Auth (300) resolves the caller from a bearer token, if any
//
// Mutating routes add RequireActor, which rejects anonymous callers.
package middleware
