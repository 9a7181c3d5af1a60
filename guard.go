package authcore

import (
	"context"
	"errors"
	"log"

	internalaudit "github.com/docsforge/authcore/internal/audit"
	"github.com/docsforge/authcore/internal/rate"
	"github.com/docsforge/authcore/password"
	"github.com/docsforge/authcore/refresh"
	"github.com/docsforge/authcore/token"
)

// Guard defines a public type used by authcore APIs.
//
// Guard instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Guard struct {
	config       Config
	users        UserStore
	codec        *token.Codec
	passwordHash *password.Hasher
	registry     *refresh.Registry
	rateLimiter  *rate.Limiter
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) Close() {
	if g == nil {
		return
	}
	if g.audit != nil {
		g.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) MetricsSnapshot() MetricsSnapshot {
	if g == nil || g.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return g.metrics.TakeSnapshot()
}

func (g *Guard) metricInc(id MetricID) {
	if g == nil || g.metrics == nil {
		return
	}
	g.metrics.Inc(id)
}

// Allow describes the allow operation and its observable behavior.
//
// Allow consults the shared rate limiter for the given client key and
// endpoint class. A counting-store outage degrades open: the request is
// permitted and the condition is logged and audited, never propagated as
// an error to the caller.
func (g *Guard) Allow(ctx context.Context, clientKey string, class EndpointClass) Decision {
	if g == nil {
		return Decision{Permitted: true}
	}
	if !g.config.RateLimit.Enabled || g.rateLimiter == nil || clientKey == "" {
		return Decision{Permitted: true}
	}

	decision, err := g.rateLimiter.Allow(ctx, clientKey, string(class))
	if err != nil {
		if errors.Is(err, rate.ErrRedisUnavailable) {
			g.metricInc(MetricLimiterDegraded)
			g.auditEmit(ctx, AuditEvent{
				EventType: auditEventLimiterDegraded,
				ClientIP:  clientKey,
				Class:     string(class),
				Success:   false,
				Error:     err.Error(),
			})
			log.Printf("authcore: rate limiter degraded, failing open: %v", err)
		} else {
			log.Printf("authcore: rate limiter misconfigured: %v", err)
		}
		return Decision{Permitted: true}
	}

	if !decision.Permitted {
		g.metricInc(MetricRateLimitHit)
		g.auditEmit(ctx, AuditEvent{
			EventType: auditEventRateLimitHit,
			ClientIP:  clientKey,
			Class:     string(class),
			Success:   false,
		})
	}

	return decision
}

// checkRate short-circuits an operation before any credential or token
// work happens, so abusive traffic cannot burn hashing or signature
// cycles. A request already charged for this class upstream (see
// [WithRateConsulted]) is not charged again.
func (g *Guard) checkRate(ctx context.Context, class EndpointClass) error {
	if rateConsultedFromContext(ctx, class) {
		return nil
	}

	decision := g.Allow(ctx, clientIPFromContext(ctx), class)
	if decision.Permitted {
		return nil
	}
	return &RateLimitedError{RetryAfter: decision.RetryAfter}
}

// Authorize describes the authorize operation and its observable behavior.
//
// Authorize validates a bearer access token by signature, type, and expiry
// only; there is deliberately no store round-trip on this path. It fails
// [ErrUnauthenticated] for an empty token, [ErrTokenExpired] past expiry,
// and [ErrInvalidToken] for any signature or claim mismatch.
func (g *Guard) Authorize(ctx context.Context, accessToken string) (*Identity, error) {
	if g == nil || g.codec == nil {
		return nil, ErrGuardNotReady
	}
	if accessToken == "" {
		g.metricInc(MetricAuthorizeFailure)
		return nil, ErrUnauthenticated
	}

	claims, err := g.codec.Verify(accessToken, token.TypeAccess)
	if err != nil {
		g.metricInc(MetricAuthorizeFailure)
		switch {
		case errors.Is(err, token.ErrExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrInvalidToken
		}
	}

	g.metricInc(MetricAuthorizeSuccess)

	identity := &Identity{UserID: claims.Subject}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}

	return identity, nil
}

func (g *Guard) issueTokenPair(ctx context.Context, user UserRecord) (*TokenPair, error) {
	access, err := g.codec.Issue(user.ID, token.TypeAccess, g.config.JWT.AccessTTL, "")
	if err != nil {
		return nil, err
	}

	_, signedRefresh, err := g.registry.Create(ctx, user.ID)
	if err != nil {
		if errors.Is(err, refresh.ErrStoreUnavailable) {
			return nil, ErrStoreUnavailable
		}
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: signedRefresh,
		TokenType:    TokenTypeBearer,
		Username:     user.Username,
	}, nil
}
