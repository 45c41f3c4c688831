package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"login_redirect_probe/internal/probe"
)

func TestRecordLoginProbe(t *testing.T) {
	account := "metrics-" + t.Name()

	r := resultFor(account, probe.RedirectedOutcome(302, "/home", true), "")
	r.Result.Elapsed = 40 * time.Millisecond
	RecordLoginProbe(r)
	RecordLoginProbe(resultFor(account, probe.NoRedirectOutcome(), "expected redirect to /home, got no redirect"))
	RecordLoginProbe(resultFor(account, probe.HTTPStatusOutcome(419), ""))

	assert.Equal(t, 1.0, testutil.ToFloat64(loginProbeOutcomes.WithLabelValues(account, "redirected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(loginProbeOutcomes.WithLabelValues(account, "no_redirect")))
	assert.Equal(t, 1.0, testutil.ToFloat64(loginProbeOutcomes.WithLabelValues(account, "http_status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(loginProbeStatusCodes.WithLabelValues(account, "302")))
	assert.Equal(t, 1.0, testutil.ToFloat64(loginProbeStatusCodes.WithLabelValues(account, "419")))
	assert.Equal(t, 1.0, testutil.ToFloat64(loginProbeMismatches.WithLabelValues(account)))
}

func TestRecordSweepCompleted(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)
	RecordSweepCompleted(at)
	assert.Equal(t, float64(1_700_000_000), testutil.ToFloat64(loginProbeLastRun))
}

func TestMetricsServerHandler(t *testing.T) {
	RecordLoginProbe(resultFor("handler@sales.local", probe.TokenNotFoundOutcome(), ""))

	server := newMetricsServer(":0")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `login_probe_outcomes_total{account="handler@sales.local",outcome="token_not_found"} 1`), body)

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
