// Package metrics exposes Prometheus counters for the verification and token flows.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	codesIssued    prometheus.Counter
	codesThrottled prometheus.Counter
	validations    *prometheus.CounterVec
	tokensIssued   *prometheus.CounterVec
	refreshes      *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		codesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otp_codes_issued_total",
			Help: "Verification codes issued.",
		}),
		codesThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otp_codes_throttled_total",
			Help: "Code requests refused inside the resend window.",
		}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "otp_validations_total",
			Help: "Code validation attempts by result.",
		}, []string{"result"}), // result: ok|rejected
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tokens_issued_total",
			Help: "Token pairs issued by origin.",
		}, []string{"kind"}), // kind: exchange|refresh
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "token_refresh_total",
			Help: "Refresh attempts by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests processed.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	var errs []error
	for _, c := range []prometheus.Collector{
		m.codesIssued, m.codesThrottled, m.validations, m.tokensIssued, m.refreshes,
		m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		errs = append(errs, m.registry.Register(c))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) CodeIssued()    { m.codesIssued.Inc() }
func (m *Metrics) CodeThrottled() { m.codesThrottled.Inc() }

func (m *Metrics) CodeValidated(ok bool) {
	result := "rejected"
	if ok {
		result = "ok"
	}
	m.validations.WithLabelValues(result).Inc()
}

func (m *Metrics) TokensIssued(kind string)    { m.tokensIssued.WithLabelValues(kind).Inc() }
func (m *Metrics) RefreshResult(result string) { m.refreshes.WithLabelValues(result).Inc() }

// ObserveHTTP records one finished request. path must be the route pattern,
// not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, path string, status int, took time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(took.Seconds())
}
