// Package metrics exposes Prometheus counters for access decisions and
// role changes. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry       *prometheus.Registry
	guardDecisions *prometheus.CounterVec
	roleMutations  *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

// New creates a private registry with the process collectors and the
// access metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	guardDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_access_guard_decisions_total",
		Help: "Route and API guard decisions by required permission and outcome.",
	}, []string{"permission", "outcome"})

	roleMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_access_role_mutations_total",
		Help: "Security role create/update/delete calls by outcome.",
	}, []string{"operation", "outcome"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_access_permission_cache_lookups_total",
		Help: "Permission object cache lookups by result.",
	}, []string{"result"})

	registry.MustRegister(guardDecisions, roleMutations, cacheLookups)

	return &Metrics{
		registry:       registry,
		guardDecisions: guardDecisions,
		roleMutations:  roleMutations,
		cacheLookups:   cacheLookups,
	}
}

// GuardDecision counts one allow or deny.
func (m *Metrics) GuardDecision(permission string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.guardDecisions.WithLabelValues(permission, outcome).Inc()
}

// RoleMutation counts a create, update or delete attempt.
func (m *Metrics) RoleMutation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.roleMutations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
