// Package metrics registers the operator's custom collectors on the
// controller-runtime metrics registry so they are served from the same
// /metrics endpoint as the built-in controller metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	// ReconcileTotal counts reconcile outcomes per resource kind.
	ReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gravitee_reconcile_total",
			Help: "Reconcile attempts partitioned by kind and resulting state.",
		},
		[]string{"kind", "result"},
	)

	// GatewayRequestsTotal counts calls to the management API.
	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gravitee_gateway_requests_total",
			Help: "Management API requests partitioned by method and outcome.",
		},
		[]string{"method", "outcome"},
	)
)

func init() {
	ctrlmetrics.Registry.MustRegister(ReconcileTotal, GatewayRequestsTotal)
}
