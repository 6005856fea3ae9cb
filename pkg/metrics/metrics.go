package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "profilekit", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "profilekit", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// ReconcileOutcomes counts submitted project entries by what the reconciler did with them:
	// reused (inline entry with an owned _id), materialized (new library project),
	// referenced (projectIds entry kept), skipped (malformed inline entry),
	// dropped (projectIds entry that is foreign, unknown or duplicate).
	ReconcileOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "profilekit", Name: "reconcile_project_entries_total", Help: "Submitted project entries by reconciliation outcome."},
		[]string{"outcome"},
	)
	CascadeRemovals = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "profilekit", Name: "cascade_profile_updates_total", Help: "Profiles updated because a referenced project was deleted."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ReconcileOutcomes)
	reg.MustRegister(CascadeRemovals)
}
