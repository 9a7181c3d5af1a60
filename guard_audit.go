package authcore

import (
	"context"
	"time"
)

const (
	auditEventRegisterSuccess   = "register_success"
	auditEventRegisterDuplicate = "register_duplicate"
	auditEventRegisterFailure   = "register_failure"
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventPasswordRehash    = "password_rehash"
	auditEventRefreshSuccess    = "refresh_success"
	auditEventRefreshInvalid    = "refresh_invalid"
	auditEventLogout            = "logout"
	auditEventLogoutAll         = "logout_all"
	auditEventRateLimitHit      = "rate_limit_triggered"
	auditEventLimiterDegraded   = "rate_limiter_degraded"
)

func (g *Guard) auditEmit(ctx context.Context, event AuditEvent) {
	if g == nil || g.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ClientIP == "" {
		event.ClientIP = clientIPFromContext(ctx)
	}
	g.audit.Emit(ctx, event)
}

func (g *Guard) auditSuccess(ctx context.Context, eventType, userID, username string) {
	g.auditEmit(ctx, AuditEvent{
		EventType: eventType,
		UserID:    userID,
		Username:  username,
		Success:   true,
	})
}

// auditFailure records the internal reason; the error returned to the
// caller stays collapsed.
func (g *Guard) auditFailure(ctx context.Context, eventType, username, reason string) {
	g.auditEmit(ctx, AuditEvent{
		EventType: eventType,
		Username:  username,
		Success:   false,
		Error:     reason,
	})
}
