// Package metrics registers the Prometheus collectors the Task reports
// against: an active-task gauge, a cumulative duration histogram, and the
// counters named in the container contract's observability section.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var namespace = "hookless_servlet"

var (
	// ActiveTasks tracks Tasks currently between start() and completion.
	ActiveTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_tasks",
		Help:      "Number of requests currently being processed.",
	})

	// TaskDuration is the cumulative wall-clock time Tasks spend from
	// start() to completion.
	TaskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Time spent processing a single request end to end.",
		Buckets:   prometheus.DefBuckets,
	})

	ReadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_read_bytes_total",
		Help:      "Bytes read from request bodies.",
	})
	ReadCalls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_reads_total",
		Help:      "Non-blocking read attempts that returned data.",
	})
	ReadWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_waits_total",
		Help:      "Read attempts that found the input stream not ready.",
	})

	WriteBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "response_write_bytes_total",
		Help:      "Bytes written to response bodies.",
	})
	WriteCalls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "response_writes_total",
		Help:      "Non-blocking write attempts that sent data.",
	})
	WriteWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "response_waits_total",
		Help:      "Write attempts that found the output stream not ready.",
	})

	ContainerExceptions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "container_exceptions_total",
		Help:      "Guarded container I/O calls that returned an error.",
	})
	AsyncExceptions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "async_exceptions_total",
		Help:      "Async-context error callbacks that killed a Task.",
	})
	ServiceExceptions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "service_exceptions_total",
		Help:      "Application service() invocations that failed.",
	})
	TimeoutExceptions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timeout_exceptions_total",
		Help:      "Tasks that hit their deadline before service() completed.",
	})

	methodCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_by_method_total",
		Help:      "Requests observed, bucketed by HTTP method.",
	}, []string{"method"})

	statusCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "responses_by_status_total",
		Help:      "Responses sent, bucketed by status code.",
	}, []string{"status"})
)

// countedMethods mirrors the Java original's countedMethods set: PATCH gets
// its own bucket even though the servlet never dispatches it, and every
// other method (including any unrecognised token) folds into the "OTHER"
// bucket.
var countedMethods = map[string]bool{
	"GET": true, "HEAD": true, "OPTIONS": true,
	"POST": true, "PUT": true, "DELETE": true, "PATCH": true,
}

// CountMethod increments the per-method counter, folding anything outside
// countedMethods into "OTHER".
func CountMethod(method string) {
	if countedMethods[method] {
		methodCounter.WithLabelValues(method).Inc()
		return
	}

	methodCounter.WithLabelValues("OTHER").Inc()
}

// CountStatus increments the per-status counter, using the exact code when
// it falls in [100, 599] and folding anything else into "other".
func CountStatus(code int) {
	if code >= 100 && code < 600 {
		statusCounter.WithLabelValues(strconv.Itoa(code)).Inc()
		return
	}

	statusCounter.WithLabelValues("other").Inc()
}
