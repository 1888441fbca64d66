// Package observability holds the Prometheus instrumentation shared by the
// store decorators and the workflow runner.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors this module exposes. Construct one per
// process with the embedding service's registerer; tests pass a fresh
// registry so collectors never collide.
type Metrics struct {
	StoreOperations    *prometheus.CounterVec
	StoreLatency       *prometheus.HistogramVec
	WorkflowExecutions *prometheus.CounterVec
	WorkflowDuration   *prometheus.HistogramVec
	WorkflowSteps      *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StoreOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mosaic_store_operations_total",
			Help: "Store operations by collection, operation and result.",
		}, []string{"collection", "operation", "result"}),
		StoreLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mosaic_store_operation_duration_seconds",
			Help:    "Store operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"collection", "operation"}),
		WorkflowExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mosaic_workflow_executions_total",
			Help: "Workflow executions by name and outcome.",
		}, []string{"workflow", "status"}),
		WorkflowDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mosaic_workflow_duration_seconds",
			Help:    "End-to-end workflow duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"workflow"}),
		WorkflowSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mosaic_workflow_steps_total",
			Help: "Workflow steps by workflow, step and outcome.",
		}, []string{"workflow", "step", "status"}),
	}

	reg.MustRegister(
		m.StoreOperations,
		m.StoreLatency,
		m.WorkflowExecutions,
		m.WorkflowDuration,
		m.WorkflowSteps,
	)
	return m
}

// ObserveStoreOperation records one store call.
func (m *Metrics) ObserveStoreOperation(collection, operation, result string, elapsed time.Duration) {
	m.StoreOperations.WithLabelValues(collection, operation, result).Inc()
	m.StoreLatency.WithLabelValues(collection, operation).Observe(elapsed.Seconds())
}

// ObserveWorkflow records one workflow execution.
func (m *Metrics) ObserveWorkflow(workflow, status string, elapsed time.Duration) {
	m.WorkflowExecutions.WithLabelValues(workflow, status).Inc()
	m.WorkflowDuration.WithLabelValues(workflow).Observe(elapsed.Seconds())
}

// ObserveWorkflowStep records one workflow step outcome.
func (m *Metrics) ObserveWorkflowStep(workflow, step, status string) {
	m.WorkflowSteps.WithLabelValues(workflow, step, status).Inc()
}
