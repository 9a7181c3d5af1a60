// Package rate implements the shared fixed-window request limiter.
//
// Each (client key, endpoint class) pair owns two Redis counters: the main
// window counter and a faster-resetting burst counter. A single Lua script
// increments both and reports the resulting counts and TTLs, so two
// concurrent requests can never both observe "under limit" and both pass;
// the increment IS the check.
//
// The limiter degrades open: when Redis is unreachable the request is
// permitted and the caller is told the store failed, so a counting-layer
// outage cannot become a full service outage.
package rate
