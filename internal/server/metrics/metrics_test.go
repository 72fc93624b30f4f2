package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest("GET", "/api/balance", 200)
	m.ObserveRequest("GET", "/api/balance", 200)
	m.AuthEvent(OperationLogin, OutcomeRejected)
	m.TokenAuditFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/balance", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEventsTotal.WithLabelValues(OperationLogin, OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenAuditFailures))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200)
		m.AuthEvent(OperationRegister, OutcomeSuccess)
		m.TokenAuditFailure()
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.AuthEvent(OperationRegister, OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mybank_auth_events_total{operation="register",outcome="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
