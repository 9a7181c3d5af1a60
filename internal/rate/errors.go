package rate

import "errors"

// ErrRedisUnavailable signals that the counter store could not be reached.
// The accompanying Decision is always permissive: counting outages degrade
// open by policy.
var ErrRedisUnavailable = errors.New("rate limiter redis unavailable")

// ErrUnknownClass signals a request against an endpoint class missing from
// the limiter configuration.
var ErrUnknownClass = errors.New("unknown endpoint class")
