package main

import (
	"fmt"
	"io"
	"net/http"

	"login_redirect_probe/internal/probe"
)

type accountResult struct {
	Account  Account
	Result   probe.Result
	Mismatch string
}

// checkExpectation returns why outcome does not satisfy the account's
// expectations, or "" when it does. NoRedirect counts as status 200.
func checkExpectation(account Account, outcome probe.Outcome) string {
	if account.ExpectStatus != 0 {
		got, ok := outcomeStatus(outcome)
		if !ok {
			return fmt.Sprintf("expected status %d, got %s", account.ExpectStatus, outcome)
		}
		if got != account.ExpectStatus {
			return fmt.Sprintf("expected status %d, got %d", account.ExpectStatus, got)
		}
	}

	if account.ExpectLocation != "" {
		if outcome.Kind != probe.Redirected || !outcome.HasLocation {
			return fmt.Sprintf("expected redirect to %s, got %s", account.ExpectLocation, outcome)
		}
		if outcome.Location != account.ExpectLocation {
			return fmt.Sprintf("expected redirect to %s, got %s", account.ExpectLocation, outcome.Location)
		}
	}

	return ""
}

func outcomeStatus(o probe.Outcome) (int, bool) {
	switch o.Kind {
	case probe.Redirected, probe.HTTPStatus:
		return o.Code, true
	case probe.NoRedirect:
		return http.StatusOK, true
	}
	return 0, false
}

// printResults writes one line per account in the
// "User: x -> Status: y, Location: z" shape.
func printResults(w io.Writer, results []accountResult) {
	for _, r := range results {
		o := r.Result.Outcome
		location := "-"
		if o.Kind == probe.Redirected && o.HasLocation {
			location = o.Location
		}

		fmt.Fprintf(w, "User: %s -> Status: %s, Location: %s", r.Account.Email, o.StatusLabel(), location)
		if o.Kind == probe.ServerError {
			fmt.Fprintf(w, ", Detail: %s", o.Detail)
		}
		if r.Mismatch != "" {
			fmt.Fprintf(w, " [MISMATCH: %s]", r.Mismatch)
		}
		fmt.Fprintln(w)
	}
}

// failures counts results that should fail the run. In strict mode a probe
// that never reached the login POST also counts.
func failures(results []accountResult, strict bool) int {
	n := 0
	for _, r := range results {
		switch {
		case r.Mismatch != "":
			n++
		case strict && (r.Result.Outcome.Kind == probe.ServerError || r.Result.Outcome.Kind == probe.TokenNotFound):
			n++
		}
	}
	return n
}
