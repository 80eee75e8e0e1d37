package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskatlas-api/internal/models"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveRequest(OutcomeOK)
	m.ObserveRequest(OutcomeOK)
	m.ObserveRequest(OutcomeClientError)
	m.ObserveUsage(models.Usage{InputTokens: 5, OutputTokens: 3})
	m.ObserveUpstream("anthropic", 200*time.Millisecond, nil)
	m.ObserveUpstream("anthropic", time.Second, errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(OutcomeClientError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requests.WithLabelValues(OutcomeUpstreamError)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.tokens.WithLabelValues("input")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.tokens.WithLabelValues("output")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.upstream))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	m.ObserveRequest(OutcomeOK)
	m.ObserveUsage(models.Usage{InputTokens: 1})
	m.ObserveUpstream("openai", time.Second, nil)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest(OutcomeConfigError)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `riskatlas_chat_requests_total{outcome="config_error"} 1`))
}
