// Package metrics exposes Prometheus collectors for the chat relay. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"riskatlas-api/internal/models"
)

const namespace = "riskatlas"

// Request outcome classes. Client and config failures never reach upstream.
const (
	OutcomeOK            = "ok"
	OutcomeClientError   = "client_error"
	OutcomeConfigError   = "config_error"
	OutcomeUpstreamError = "upstream_error"
	OutcomeRateLimited   = "rate_limited"
)

type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	upstream *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by outcome class.",
		}, []string{"outcome"}),
		upstream: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_upstream_duration_seconds",
			Help:      "Latency of upstream LLM calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"provider", "result"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_tokens_total",
			Help:      "Tokens reported by the upstream provider.",
		}, []string{"direction"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.upstream,
		m.tokens,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveUpstream(provider string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.upstream.WithLabelValues(provider, result).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveUsage(usage models.Usage) {
	if m == nil {
		return
	}
	m.tokens.WithLabelValues("input").Add(float64(usage.InputTokens))
	m.tokens.WithLabelValues("output").Add(float64(usage.OutputTokens))
}
