package probe

import "fmt"

type OutcomeKind int

const (
	ServerError OutcomeKind = iota
	TokenNotFound
	Redirected
	HTTPStatus
	NoRedirect
)

func (k OutcomeKind) String() string {
	switch k {
	case ServerError:
		return "server_error"
	case TokenNotFound:
		return "token_not_found"
	case Redirected:
		return "redirected"
	case HTTPStatus:
		return "http_status"
	case NoRedirect:
		return "no_redirect"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the classified result of one login attempt. Which fields are
// meaningful depends on Kind:
//
//	ServerError    Detail
//	Redirected     Code, Location (if HasLocation)
//	HTTPStatus     Code
type Outcome struct {
	Kind        OutcomeKind
	Code        int
	Location    string
	HasLocation bool
	Detail      string
}

func ServerErrorOutcome(detail string) Outcome {
	return Outcome{Kind: ServerError, Detail: detail}
}

func TokenNotFoundOutcome() Outcome {
	return Outcome{Kind: TokenNotFound}
}

// RedirectedOutcome keeps location verbatim; relative and absolute values
// are not normalised.
func RedirectedOutcome(code int, location string, ok bool) Outcome {
	return Outcome{Kind: Redirected, Code: code, Location: location, HasLocation: ok}
}

func HTTPStatusOutcome(code int) Outcome {
	return Outcome{Kind: HTTPStatus, Code: code}
}

func NoRedirectOutcome() Outcome {
	return Outcome{Kind: NoRedirect}
}

// StatusLabel is the short status column used in reports and metrics.
func (o Outcome) StatusLabel() string {
	switch o.Kind {
	case Redirected, HTTPStatus:
		return fmt.Sprintf("%d", o.Code)
	default:
		return o.Kind.String()
	}
}

func (o Outcome) String() string {
	switch o.Kind {
	case ServerError:
		return "server error: " + o.Detail
	case TokenNotFound:
		return "token not found"
	case Redirected:
		if !o.HasLocation {
			return fmt.Sprintf("redirected %d (no Location)", o.Code)
		}
		return fmt.Sprintf("redirected %d -> %s", o.Code, o.Location)
	case HTTPStatus:
		return fmt.Sprintf("http status %d", o.Code)
	case NoRedirect:
		return "no redirect"
	default:
		return o.Kind.String()
	}
}
