// Package metrics defines the custom Prometheus metrics of the ventes API.
//
// HTTP request metrics come from the echoprometheus middleware; the collectors
// here count domain outcomes that status codes alone do not distinguish.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ventes"

type Metrics struct {
	// LoginAttemptsTotal counts login attempts.
	// Label result: "success", "invalid_credentials", "error".
	LoginAttemptsTotal *prometheus.CounterVec

	// RegistrationsTotal counts registration attempts.
	// Label result: "created", "duplicate", "invalid", "error".
	RegistrationsTotal *prometheus.CounterVec

	// SalesMutationsTotal counts successful writes to the sales table.
	// Label op: "create", "update", "delete".
	SalesMutationsTotal *prometheus.CounterVec

	// RateLimitRejectionsTotal counts requests refused by a rate limiter.
	// Label limiter: "register", "login", "api".
	RateLimitRejectionsTotal *prometheus.CounterVec

	// AuthFailuresTotal counts rejected bearer tokens.
	// Label reason: "missing", "expired", "malformed", "bad_signature".
	AuthFailuresTotal *prometheus.CounterVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoginAttemptsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts, by result.",
		}, []string{"result"}),
		RegistrationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of registration attempts, by result.",
		}, []string{"result"}),
		SalesMutationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_mutations_total",
			Help:      "Total number of successful sale writes, by operation.",
		}, []string{"op"}),
		RateLimitRejectionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejections_total",
			Help:      "Total number of requests rejected by a rate limiter.",
		}, []string{"limiter"}),
		AuthFailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total number of rejected bearer tokens, by reason.",
		}, []string{"reason"}),
	}
}

// NewNop returns metrics bound to a private registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
