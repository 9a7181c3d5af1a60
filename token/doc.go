// Package token signs and verifies the compact signed tokens issued by the
// auth guard. The algorithm is pinned to HMAC-SHA256 with a single shared
// symmetric secret; it is not negotiable per token, which removes the
// algorithm-confusion class of attacks by construction.
//
// Claims are a fixed, explicitly typed structure. The token type ("access"
// or "refresh") is a first-class claim checked on every Verify call, so a
// refresh token can never be accepted where an access token is expected.
//
// Expiry is judged with zero leeway: no clock-skew grace period is
// granted. Deployments with drifting clocks should fix the clocks, not
// the tokens.
package token
