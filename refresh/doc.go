// Package refresh is the server-side registry of live refresh tokens.
//
// A refresh token's signature is necessary but not sufficient: the registry
// is the sole authority on whether the token is still usable. Each issued
// token gets a record keyed by its token_id with a Redis TTL equal to the
// token's own expiry, so the signed expiry and the stored record lapse
// together and the two layers can never disagree after the TTL elapses.
//
// Revocation is a single atomic Lua operation against the shared store.
// Revoking an absent or already-revoked token is not an error. RevokeAll
// walks the registry's own per-user index set; it never needs token_ids
// from outside the store.
//
// The registry fails closed: if Redis is unreachable, validity checks
// return ErrStoreUnavailable rather than guessing, since failing open
// would let a revoked token live through the outage.
package refresh
