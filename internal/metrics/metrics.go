package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	gatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paynet_gateway_requests_total",
			Help: "Requests sent to the PAYNET gateway by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	gatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paynet_gateway_request_duration_seconds",
			Help:    "PAYNET gateway round trip in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	reconcileTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paynet_reconcile_transitions_total",
			Help: "Order transitions decided by the reconciler",
		},
		[]string{"transition", "applied"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(gatewayRequestsTotal)
	prometheus.MustRegister(gatewayRequestDuration)
	prometheus.MustRegister(reconcileTransitionsTotal)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

func ObserveHTTP(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveGatewayCall records one gateway exchange. outcome is "ok" or the
// error class ("transport", "empty", "validation", "decode").
func ObserveGatewayCall(endpoint, outcome string, d time.Duration) {
	gatewayRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	gatewayRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func RecordTransition(transition string, applied bool) {
	label := "false"
	if applied {
		label = "true"
	}
	reconcileTransitionsTotal.WithLabelValues(transition, label).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
