// Package metrics exposes Prometheus metrics for the HTTP API and the QA workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics represents the collection of all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	WorkflowTransitions    *prometheus.CounterVec
	AccessRequestsResolved *prometheus.CounterVec
	AccessRequestsCreated  prometheus.Counter
	ChecklistsCreated      prometheus.Counter
	ChecklistItemsExecuted *prometheus.CounterVec
}

// NewMetrics creates a registry with Go runtime collectors and registers all metrics on it.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bugcake_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bugcake_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.WorkflowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bugcake_workflow_transitions_total",
			Help: "Test case workflow transitions by action and resulting status",
		},
		[]string{"action", "to_status"},
	)

	m.AccessRequestsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bugcake_access_requests_resolved_total",
			Help: "Access requests resolved by outcome and resource type",
		},
		[]string{"status", "resource_type"},
	)

	m.AccessRequestsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bugcake_access_requests_created_total",
			Help: "Access requests filed",
		},
	)

	m.ChecklistsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bugcake_checklists_created_total",
			Help: "Checklists created from approved test cases",
		},
	)

	m.ChecklistItemsExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bugcake_checklist_items_executed_total",
			Help: "Checklist item executions by result",
		},
		[]string{"execution_status"},
	)

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.WorkflowTransitions,
		m.AccessRequestsResolved,
		m.AccessRequestsCreated,
		m.ChecklistsCreated,
		m.ChecklistItemsExecuted,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request counts and latency. Paths are gin route templates
// so IDs do not explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// WorkflowTransition counts a test case status change.
func (m *Metrics) WorkflowTransition(action, toStatus string) {
	if m == nil {
		return
	}
	m.WorkflowTransitions.WithLabelValues(action, toStatus).Inc()
}

// AccessRequestResolved counts an approved or declined access request.
func (m *Metrics) AccessRequestResolved(status, resourceType string) {
	if m == nil {
		return
	}
	m.AccessRequestsResolved.WithLabelValues(status, resourceType).Inc()
}

// AccessRequestCreated counts a filed access request.
func (m *Metrics) AccessRequestCreated() {
	if m == nil {
		return
	}
	m.AccessRequestsCreated.Inc()
}

// ChecklistCreated counts a new checklist.
func (m *Metrics) ChecklistCreated() {
	if m == nil {
		return
	}
	m.ChecklistsCreated.Inc()
}

// ChecklistItemExecuted counts an execution result.
func (m *Metrics) ChecklistItemExecuted(status string) {
	if m == nil {
		return
	}
	m.ChecklistItemsExecuted.WithLabelValues(status).Inc()
}
