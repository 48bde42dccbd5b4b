package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for this service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// NotificationDeliveries counts webhook delivery outcomes by event type and status.
	NotificationDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notification_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
	// NotificationLatency tracks webhook delivery latencies in milliseconds.
	NotificationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "notification_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"event_type", "status"},
	)

	// SolverIterations counts LNS iterations by instance name.
	SolverIterations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_iterations_total", Help: "Total LNS iterations executed."},
		[]string{"instance"},
	)
	// SolverImprovements counts accepted improving moves.
	SolverImprovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_improvements_total", Help: "Total accepted improving LNS moves."},
		[]string{"instance"},
	)
	// SolverRejectedInfeasible counts candidates discarded for infeasibility.
	SolverRejectedInfeasible = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_rejected_infeasible_total", Help: "Total LNS candidates discarded as infeasible."},
		[]string{"instance"},
	)
	// SolverRejectedLAHC counts candidates rejected by the acceptance rule.
	SolverRejectedLAHC = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_rejected_lahc_total", Help: "Total LNS candidates rejected by LAHC acceptance."},
		[]string{"instance"},
	)
	// SolverRunDuration records total solve wall-clock time in seconds.
	SolverRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "solver_run_duration_seconds", Help: "Total solve run duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"status"},
	)
	// SolverVehicleCount records the incumbent vehicle count at solve end.
	SolverVehicleCount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "solver_vehicle_count", Help: "Incumbent vehicle count at solve completion.", Buckets: prometheus.LinearBuckets(1, 2, 20)},
		[]string{"instance"},
	)
)

// RegisterDefault registers collectors to Registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(NotificationDeliveries)
		Registry.MustRegister(NotificationLatency)
		Registry.MustRegister(SolverIterations)
		Registry.MustRegister(SolverImprovements)
		Registry.MustRegister(SolverRejectedInfeasible)
		Registry.MustRegister(SolverRejectedLAHC)
		Registry.MustRegister(SolverRunDuration)
		Registry.MustRegister(SolverVehicleCount)
		// Go/process collectors on our registry.
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
