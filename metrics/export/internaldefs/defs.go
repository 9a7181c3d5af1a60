package internaldefs

import (
	authcore "github.com/docsforge/authcore"
)

// CounterDef defines a public type used by authcore APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the auth guard.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricRegisterSuccess, Name: "authcore_register_success_total", Help: "Successful registrations."},
	{ID: authcore.MetricRegisterDuplicate, Name: "authcore_register_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful login attempts."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed login attempts."},
	{ID: authcore.MetricPasswordRehash, Name: "authcore_password_rehash_total", Help: "Transparent password hash upgrades."},
	{ID: authcore.MetricRefreshSuccess, Name: "authcore_refresh_success_total", Help: "Successful refresh operations."},
	{ID: authcore.MetricRefreshFailure, Name: "authcore_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: authcore.MetricAuthorizeSuccess, Name: "authcore_authorize_success_total", Help: "Successful access-token validations."},
	{ID: authcore.MetricAuthorizeFailure, Name: "authcore_authorize_failure_total", Help: "Failed access-token validations."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Single-session logout operations."},
	{ID: authcore.MetricLogoutAll, Name: "authcore_logout_all_total", Help: "Logout-all operations."},
	{ID: authcore.MetricRateLimitHit, Name: "authcore_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
	{ID: authcore.MetricLimiterDegraded, Name: "authcore_limiter_degraded_total", Help: "Rate-limit checks that failed open on store outage."},
}
