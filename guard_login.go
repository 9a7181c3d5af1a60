package authcore

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Unknown usernames and wrong passwords are indistinguishable to the
// caller: both return [ErrInvalidCredentials]. The internal reason is
// recorded on the audit trail only.
func (g *Guard) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	if g == nil || g.users == nil || g.passwordHash == nil || g.registry == nil {
		return nil, ErrGuardNotReady
	}

	if err := g.checkRate(ctx, ClassAuth); err != nil {
		return nil, err
	}

	if username == "" || password == "" {
		g.metricInc(MetricLoginFailure)
		g.auditFailure(ctx, auditEventLoginFailure, username, "empty_input")
		return nil, ErrInvalidCredentials
	}

	user, err := g.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			g.metricInc(MetricLoginFailure)
			g.auditFailure(ctx, auditEventLoginFailure, username, "unknown_user")
			return nil, ErrInvalidCredentials
		}
		g.auditFailure(ctx, auditEventLoginFailure, username, "store_failure")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	verification, err := g.passwordHash.Verify(password, user.PasswordHash)
	if err != nil {
		g.metricInc(MetricLoginFailure)
		g.auditFailure(ctx, auditEventLoginFailure, username, "corrupt_credential")
		return nil, ErrCorruptCredential
	}
	if !verification.Match {
		g.metricInc(MetricLoginFailure)
		g.auditFailure(ctx, auditEventLoginFailure, username, "password_mismatch")
		return nil, ErrInvalidCredentials
	}

	if verification.NeedsRehash && g.config.Password.UpgradeOnLogin {
		g.rehashPassword(ctx, user, password)
	}

	pair, err := g.issueTokenPair(ctx, user)
	if err != nil {
		g.auditFailure(ctx, auditEventLoginFailure, username, "token_issue_failure")
		return nil, err
	}

	g.metricInc(MetricLoginSuccess)
	g.auditSuccess(ctx, auditEventLoginSuccess, user.ID, user.Username)

	return pair, nil
}

// rehashPassword upgrades a stored hash after a successful match against
// deprecated parameters. Best effort: a failed upgrade must never fail
// the login that triggered it.
func (g *Guard) rehashPassword(ctx context.Context, user UserRecord, password string) {
	newHash, err := g.passwordHash.Hash(password)
	if err != nil {
		log.Printf("authcore: password rehash failed for user %s: %v", user.ID, err)
		return
	}

	if err := g.users.UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
		log.Printf("authcore: password rehash persist failed for user %s: %v", user.ID, err)
		return
	}

	g.metricInc(MetricPasswordRehash)
	g.auditSuccess(ctx, auditEventPasswordRehash, user.ID, user.Username)
}
