package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorderCounters(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.CodeIssued()
	m.CodeIssued()
	m.CodeThrottled()
	m.CodeValidated(true)
	m.CodeValidated(false)
	m.CodeValidated(false)
	m.TokensIssued("exchange")
	m.RefreshResult("invalid_scope")

	out := scrape(t, m)
	assert.Contains(t, out, "otp_codes_issued_total 2")
	assert.Contains(t, out, "otp_codes_throttled_total 1")
	assert.Contains(t, out, `otp_validations_total{result="ok"} 1`)
	assert.Contains(t, out, `otp_validations_total{result="rejected"} 2`)
	assert.Contains(t, out, `tokens_issued_total{kind="exchange"} 1`)
	assert.Contains(t, out, `token_refresh_total{result="invalid_scope"} 1`)
}

func TestInstancesAreIndependent(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)

	a.CodeIssued()
	assert.Contains(t, scrape(t, b), "otp_codes_issued_total 0")
}

func TestObserveHTTP(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.ObserveHTTP("POST", "/api/v1/auth/token", 200, 15*time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `http_requests_total{method="POST",path="/api/v1/auth/token",status="200"} 1`)
	assert.Contains(t, out, `http_request_duration_seconds_count{method="POST",path="/api/v1/auth/token"} 1`)
}
