package authcore

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/docsforge/authcore/internal/audit"
	internalmetrics "github.com/docsforge/authcore/internal/metrics"
	"github.com/docsforge/authcore/internal/rate"
)

// UserRecord is the full account record returned by [UserStore].
// PasswordHash is an opaque string owned by the password subsystem;
// callers must never inspect or compare it themselves.
type UserRecord struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateUserInput is the input for [UserStore.CreateUser]. The store
// assigns the record ID and creation timestamp.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
}

// UserStore is the interface callers must implement to integrate authcore
// with their user database. Implementations must return [ErrUserNotFound]
// for missing records and [ErrDuplicateUser] for uniqueness violations on
// username or email; any other error is treated as a store outage.
//
// UpdatePasswordHash must be a single atomic write: the guard calls it
// concurrently from login paths during transparent rehash.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

// TokenPair is returned by [Guard.Register], [Guard.Login], and
// [Guard.Refresh]. RefreshToken is empty on the refresh path: the
// presented refresh token is reused for its full lifetime rather than
// rotated.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Username     string
}

// Identity is returned by [Guard.Authorize] for a valid access token.
type Identity struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenTypeBearer is the token_type value carried by every issued pair.
const TokenTypeBearer = "bearer"

// Decision is the outcome of a rate-limit check.
//
//	Docs: docs/rate_limiting.md
type Decision = rate.Decision

// AuditEvent is a structured audit record emitted by the guard.
//
//	Docs: docs/audit.md
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the guard's audit dispatcher.
//
//	Docs: docs/audit.md
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
//
//	Docs: docs/audit.md
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
//
//	Docs: docs/audit.md
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
//
//	Docs: docs/audit.md
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
//
//	Docs: docs/audit.md
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter in the in-process metrics system.
//
//	Docs: docs/metrics.md
type MetricID = internalmetrics.MetricID

const (
	// MetricRegisterSuccess is an exported constant or variable used by the auth guard.
	MetricRegisterSuccess = internalmetrics.MetricRegisterSuccess
	// MetricRegisterDuplicate is an exported constant or variable used by the auth guard.
	MetricRegisterDuplicate = internalmetrics.MetricRegisterDuplicate
	// MetricLoginSuccess is an exported constant or variable used by the auth guard.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure is an exported constant or variable used by the auth guard.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricPasswordRehash is an exported constant or variable used by the auth guard.
	MetricPasswordRehash = internalmetrics.MetricPasswordRehash
	// MetricRefreshSuccess is an exported constant or variable used by the auth guard.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the auth guard.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricAuthorizeSuccess is an exported constant or variable used by the auth guard.
	MetricAuthorizeSuccess = internalmetrics.MetricAuthorizeSuccess
	// MetricAuthorizeFailure is an exported constant or variable used by the auth guard.
	MetricAuthorizeFailure = internalmetrics.MetricAuthorizeFailure
	// MetricLogout is an exported constant or variable used by the auth guard.
	MetricLogout = internalmetrics.MetricLogout
	// MetricLogoutAll is an exported constant or variable used by the auth guard.
	MetricLogoutAll = internalmetrics.MetricLogoutAll
	// MetricRateLimitHit is an exported constant or variable used by the auth guard.
	MetricRateLimitHit = internalmetrics.MetricRateLimitHit
	// MetricLimiterDegraded is an exported constant or variable used by the auth guard.
	MetricLimiterDegraded = internalmetrics.MetricLimiterDegraded
)

// Metrics holds atomic counters for guard operations.
//
//	Docs: docs/metrics.md
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
//
//	Docs: docs/metrics.md
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
//
//	Docs: docs/metrics.md
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
