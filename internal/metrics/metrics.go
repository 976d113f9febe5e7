// Package metrics registers the engine's Prometheus instrumentation
// against a private registry — but exposes only a Registerer and a
// Gatherer, never an HTTP handler, since this module owns no listener.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects resolver, cache and mutation counters.
type Metrics struct {
	registry *prometheus.Registry

	ResolverCalls   *prometheus.CounterVec // labels: path=fast|explain
	CacheL1Hits     prometheus.Counter
	CacheL2Hits     prometheus.Counter
	CacheMisses     prometheus.Counter
	VersionBumps    prometheus.Counter
	GroupTruncation prometheus.Counter
}

// New builds a private registry, avoiding prometheus.DefaultRegisterer
// since this is a library dependency, not a standalone process.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	resolverCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rolemanager_resolver_calls_total",
		Help: "Resolver invocations by path (fast or explain).",
	}, []string{"path"})
	l1 := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rolemanager_cache_l1_hits_total",
		Help: "Requests served from the per-request cache.",
	})
	l2 := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rolemanager_cache_l2_hits_total",
		Help: "Requests served from the process-wide cache.",
	})
	miss := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rolemanager_cache_misses_total",
		Help: "Requests that fell through to the resolver.",
	})
	bumps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rolemanager_version_bumps_total",
		Help: "permissions_version increments.",
	})
	truncated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rolemanager_group_closure_truncated_total",
		Help: "Group closure or candidate traversals cut off at the depth bound.",
	})

	registry.MustRegister(resolverCalls, l1, l2, miss, bumps, truncated)

	return &Metrics{
		registry:        registry,
		ResolverCalls:   resolverCalls,
		CacheL1Hits:     l1,
		CacheL2Hits:     l2,
		CacheMisses:     miss,
		VersionBumps:    bumps,
		GroupTruncation: truncated,
	}
}

// Registerer exposes the private registry so the host process can mount
// it alongside its own metrics (e.g. under its own /metrics handler).
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// Gatherer exposes the private registry for scraping.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}
