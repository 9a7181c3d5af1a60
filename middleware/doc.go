// Package middleware exposes HTTP adapters for bearer-token authentication
// and per-class rate limiting built on top of authcore.Guard.
//
// # Guards
//
//   - [RequireAuth] — validates the Authorization bearer token and injects
//     the resulting Identity into the request context.
//   - [RateLimit] — consults the guard's shared limiter for one endpoint
//     class before the handler runs.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Guard calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Guard.Authorize and Guard.Allow.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Guard).
//   - Access Redis (Guard handles I/O).
//   - Make authorization decisions beyond pass/reject from the Guard.
package middleware
