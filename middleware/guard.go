package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	authcore "github.com/docsforge/authcore"
)

type identityContextKey struct{}

// IdentityFromContext returns the authenticated identity injected by
// [RequireAuth], if any.
func IdentityFromContext(ctx context.Context) (*authcore.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*authcore.Identity)
	return identity, ok
}

// RequireAuth returns middleware that validates the Authorization bearer
// token through the guard. Missing, malformed, expired, and invalid
// tokens all produce 401 with a WWW-Authenticate challenge; the specific
// failure is never exposed to the client.
func RequireAuth(guard *authcore.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if guard == nil {
				unauthorized(w)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			identity, err := guard.Authorize(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit returns middleware that counts the request against the given
// endpoint class, keyed by client IP. Denials produce 429 with a
// Retry-After hint. The client IP is attached to the request context so
// guard operations downstream reuse the same limiter key, and the class
// is marked consulted so those operations do not charge the budget a
// second time for the same request.
func RateLimit(guard *authcore.Guard, class authcore.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if guard == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientKey := clientIP(r)
			ctx := authcore.WithClientIP(r.Context(), clientKey)

			decision := guard.Allow(ctx, clientKey, class)
			if !decision.Permitted {
				rateLimited(w, &authcore.RateLimitedError{RetryAfter: decision.RetryAfter})
				return
			}

			ctx = authcore.WithRateConsulted(ctx, class)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func rateLimited(w http.ResponseWriter, err error) {
	var limited *authcore.RateLimitedError
	if errors.As(err, &limited) && limited.RetryAfter > 0 {
		seconds := int(limited.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}
	http.Error(w, "rate limited", http.StatusTooManyRequests)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

// clientIP strips the port from RemoteAddr. Proxy headers are deliberately
// not consulted; hosts behind a trusted proxy should wrap the limiter with
// their own key extraction.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
