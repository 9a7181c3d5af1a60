package authcore

import "context"

type clientIPContextKey struct{}

// WithClientIP attaches the caller's network identity to ctx. The Guard
// uses it as the rate-limit client key and in audit events. Multiple
// logical users behind the same address share a bucket by design.
//
//	Docs: docs/rate_limiting.md
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

type rateConsultedContextKey struct{ class EndpointClass }

// WithRateConsulted records that the given endpoint class has already
// been charged against the caller's budget for this request. Guard
// operations skip their own limiter consult when the mark is present,
// so HTTP middleware and a guard operation never charge one request
// twice.
//
//	Docs: docs/rate_limiting.md
func WithRateConsulted(ctx context.Context, class EndpointClass) context.Context {
	return context.WithValue(ctx, rateConsultedContextKey{class: class}, true)
}

func rateConsultedFromContext(ctx context.Context, class EndpointClass) bool {
	if ctx == nil {
		return false
	}

	consulted, _ := ctx.Value(rateConsultedContextKey{class: class}).(bool)
	return consulted
}
