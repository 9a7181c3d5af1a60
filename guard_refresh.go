package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsforge/authcore/refresh"
	"github.com/docsforge/authcore/token"
)

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The presented refresh token stays valid for its full lifetime; the
// returned pair carries a new access token and an empty RefreshToken.
// Unlike the access-token path, revocation checks fail CLOSED: a
// registry outage returns [ErrStoreUnavailable], never a new token.
func (g *Guard) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if g == nil || g.codec == nil || g.registry == nil || g.users == nil {
		return nil, ErrGuardNotReady
	}

	if err := g.checkRate(ctx, ClassAuth); err != nil {
		return nil, err
	}

	if refreshToken == "" {
		g.metricInc(MetricRefreshFailure)
		return nil, ErrInvalidToken
	}

	claims, err := g.codec.Verify(refreshToken, token.TypeRefresh)
	if err != nil {
		g.metricInc(MetricRefreshFailure)
		g.auditFailure(ctx, auditEventRefreshInvalid, "", "signature_or_type")
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	valid, err := g.registry.IsValid(ctx, claims.ID)
	if err != nil {
		g.metricInc(MetricRefreshFailure)
		g.auditFailure(ctx, auditEventRefreshInvalid, "", "registry_unavailable")
		if errors.Is(err, refresh.ErrStoreUnavailable) {
			return nil, ErrStoreUnavailable
		}
		return nil, err
	}
	if !valid {
		g.metricInc(MetricRefreshFailure)
		g.auditFailure(ctx, auditEventRefreshInvalid, "", "revoked_or_unknown")
		return nil, ErrInvalidToken
	}

	user, err := g.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		g.metricInc(MetricRefreshFailure)
		if errors.Is(err, ErrUserNotFound) {
			// Account deleted since issuance; the token is dead.
			g.auditFailure(ctx, auditEventRefreshInvalid, "", "unknown_user")
			return nil, ErrInvalidToken
		}
		g.auditFailure(ctx, auditEventRefreshInvalid, "", "store_failure")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	access, err := g.codec.Issue(user.ID, token.TypeAccess, g.config.JWT.AccessTTL, "")
	if err != nil {
		g.metricInc(MetricRefreshFailure)
		return nil, err
	}

	g.metricInc(MetricRefreshSuccess)
	g.auditSuccess(ctx, auditEventRefreshSuccess, user.ID, user.Username)

	return &TokenPair{
		AccessToken: access,
		TokenType:   TokenTypeBearer,
		Username:    user.Username,
	}, nil
}
