package authcore

import (
	"context"
	"errors"

	"github.com/docsforge/authcore/refresh"
	"github.com/docsforge/authcore/token"
)

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Logout is idempotent: a malformed, expired, or already-revoked token
// returns nil. The only failure surfaced is [ErrStoreUnavailable], when
// the revocation could not be durably recorded.
func (g *Guard) Logout(ctx context.Context, refreshToken string) error {
	if g == nil || g.codec == nil || g.registry == nil {
		return ErrGuardNotReady
	}

	if refreshToken == "" {
		return nil
	}

	claims, err := g.codec.Verify(refreshToken, token.TypeRefresh)
	if err != nil {
		// Nothing to revoke; treat as already logged out.
		return nil
	}

	if err := g.registry.Revoke(ctx, claims.ID); err != nil {
		if errors.Is(err, refresh.ErrStoreUnavailable) {
			return ErrStoreUnavailable
		}
		return err
	}

	g.metricInc(MetricLogout)
	g.auditSuccess(ctx, auditEventLogout, claims.Subject, "")

	return nil
}

// LogoutAll describes the logoutall operation and its observable behavior.
//
// LogoutAll may return an error when input validation, dependency calls, or security checks fail.
// LogoutAll does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) LogoutAll(ctx context.Context, userID string) error {
	if g == nil || g.registry == nil {
		return ErrGuardNotReady
	}

	if userID == "" {
		return errors.New("user id required")
	}

	if err := g.registry.RevokeAll(ctx, userID); err != nil {
		if errors.Is(err, refresh.ErrStoreUnavailable) {
			return ErrStoreUnavailable
		}
		return err
	}

	g.metricInc(MetricLogoutAll)
	g.auditSuccess(ctx, auditEventLogoutAll, userID, "")

	return nil
}
