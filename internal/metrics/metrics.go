// metrics — Prometheus-метрики шлюза (default registry, отдаются через promhttp).
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admin_gateway"

// Значения label result для SessionRefresh и GuardRefresh.
const (
	ResultOK               = "ok"
	ResultFailed           = "failed"
	ResultExchangeFailed   = "exchange_failed"
	ResultTokensMissing    = "tokens_missing"
	ResultUserFetchFailed  = "user_fetch_failed"
	ResultSharedRotation   = "shared"
	ResultUpstreamRejected = "rejected"
)

// Значения label source для CredentialsResolve.
const (
	SourceCookie    = "cookie"
	SourceRefreshed = "refreshed"
	SourceMissing   = "missing"
	SourceFailed    = "failed"
)

var (
	SessionRefresh = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_refresh_total",
		Help:      "Token rotations by outcome.",
	}, []string{"result"})

	CredentialsResolve = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credentials_resolve_total",
		Help:      "Credential resolutions by token source.",
	}, []string{"source"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Outbound requests to the upstream API.",
	}, []string{"method", "code"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Outbound request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	GuardRefresh = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_background_refresh_total",
		Help:      "Background session refreshes started by the route guard.",
	}, []string{"result"})
)

// ObserveUpstream фиксирует один исходящий вызов; code=0 — транспортная ошибка.
func ObserveUpstream(method string, code int, seconds float64) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}

	UpstreamRequests.WithLabelValues(method, label).Inc()
	UpstreamDuration.WithLabelValues(method).Observe(seconds)
}
