package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"login_redirect_probe/internal/probe"
)

// runSweep probes every account once, in order, and checks expectations.
func runSweep(ctx context.Context, prober *probe.Prober, accounts []Account) []accountResult {
	results := prober.ProbeAll(ctx, credentialsOf(accounts))

	out := make([]accountResult, len(results))
	for i, r := range results {
		out[i] = accountResult{
			Account:  accounts[i],
			Result:   r,
			Mismatch: checkExpectation(accounts[i], r.Outcome),
		}
		RecordLoginProbe(out[i])
	}
	RecordSweepCompleted(time.Now())
	return out
}

// monitorLogins sweeps on every tick until ctx is cancelled
func monitorLogins(ctx context.Context, w io.Writer, config *Config, prober *probe.Prober, accounts []Account) {
	fmt.Fprintln(w, "Starting login probe monitor...")
	fmt.Fprintf(w, "   Probing %d accounts against %s every %s\n", len(accounts), prober.LoginURL(), config.Interval)
	fmt.Fprintln(w)

	ticker := time.NewTicker(config.Interval)
	defer ticker.Stop()

	// Run once immediately
	performLoginChecks(ctx, w, prober, accounts)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "Login probe monitor stopped")
			return
		case <-ticker.C:
			performLoginChecks(ctx, w, prober, accounts)
		}
	}
}

// performLoginChecks runs one sweep and logs a line per account
func performLoginChecks(ctx context.Context, w io.Writer, prober *probe.Prober, accounts []Account) []accountResult {
	runID := uuid.NewString()[:8]
	results := runSweep(ctx, prober, accounts)

	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05")
	for _, r := range results {
		o := r.Result.Outcome

		statusEmoji := "✓"
		switch {
		case r.Mismatch != "" || o.Kind == probe.ServerError || o.Kind == probe.TokenNotFound:
			statusEmoji = "✗"
		case o.Kind == probe.HTTPStatus:
			statusEmoji = "⚠"
		}

		fmt.Fprintf(w, "[LOGIN-PROBE][%s][%s][%s] %s | Latency: %dms | %s",
			timestamp,
			runID,
			r.Account.Email,
			statusEmoji,
			r.Result.Elapsed.Milliseconds(),
			o,
		)
		if r.Mismatch != "" {
			fmt.Fprintf(w, " | MISMATCH: %s", r.Mismatch)
		}
		fmt.Fprintln(w)
	}

	return results
}
