/*
Package observability turns engine lifecycle hooks into logs and Prometheus metrics.

Hooks from several sources can be fanned out with Combine:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Combine(m.Hooks(), observability.LoggingHooks(logger))
*/
package observability
