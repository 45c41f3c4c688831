package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"login_redirect_probe/internal/probe"
)

var (
	// Login probe metrics
	loginProbeOutcomes    *prometheus.CounterVec
	loginProbeLatency     *prometheus.HistogramVec
	loginProbeStatusCodes *prometheus.CounterVec
	loginProbeMismatches  *prometheus.CounterVec
	loginProbeLastRun     prometheus.Gauge
)

func init() {
	loginProbeOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_probe_outcomes_total",
			Help: "Total number of login probes by classified outcome",
		},
		[]string{"account", "outcome"},
	)
	prometheus.MustRegister(loginProbeOutcomes)

	// GET + POST round trip, buckets sized for a local app server
	loginProbeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "login_probe_latency_milliseconds",
			Help:    "Time to fetch the login page and submit the form, in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 200, 500, 1000, 2000, 5000},
		},
		[]string{"account"},
	)
	prometheus.MustRegister(loginProbeLatency)

	loginProbeStatusCodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_probe_status_codes_total",
			Help: "Total count of login POST responses by status code",
		},
		[]string{"account", "status_code"},
	)
	prometheus.MustRegister(loginProbeStatusCodes)

	loginProbeMismatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_probe_expectation_mismatches_total",
			Help: "Total number of probes whose outcome did not match the configured expectation",
		},
		[]string{"account"},
	)
	prometheus.MustRegister(loginProbeMismatches)

	loginProbeLastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "login_probe_last_sweep_timestamp_seconds",
			Help: "Unix time of the last completed credential sweep",
		},
	)
	prometheus.MustRegister(loginProbeLastRun)
}

// RecordLoginProbe records one classified probe
func RecordLoginProbe(r accountResult) {
	account := r.Account.Email
	outcome := r.Result.Outcome

	loginProbeOutcomes.WithLabelValues(account, outcome.Kind.String()).Inc()
	loginProbeLatency.WithLabelValues(account).Observe(float64(r.Result.Elapsed.Milliseconds()))

	// NoRedirect only tells us "some 2xx", so it stays out of the status breakdown
	if outcome.Kind == probe.Redirected || outcome.Kind == probe.HTTPStatus {
		loginProbeStatusCodes.WithLabelValues(account, strconv.Itoa(outcome.Code)).Inc()
	}

	if r.Mismatch != "" {
		loginProbeMismatches.WithLabelValues(account).Inc()
	}
}

func RecordSweepCompleted(at time.Time) {
	loginProbeLastRun.Set(float64(at.Unix()))
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
