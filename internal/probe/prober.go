package probe

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultLoginPath = "/login"

// Credential is one account to try.
type Credential struct {
	Email    string
	Password string
}

// Result pairs a credential with the outcome of probing it.
type Result struct {
	Credential Credential
	Outcome    Outcome
	Elapsed    time.Duration
}

type ProberOption func(*Prober)

// WithSessionFactory replaces how each attempt gets its client. The factory
// must return a new client on every call.
func WithSessionFactory(f func() (*SessionClient, error)) ProberOption {
	return func(p *Prober) {
		p.newSession = f
	}
}

func WithClientOptions(opts ...SessionOption) ProberOption {
	return func(p *Prober) {
		p.clientOpts = append(p.clientOpts, opts...)
	}
}

func WithLoginPath(path string) ProberOption {
	return func(p *Prober) {
		if path != "" {
			p.loginPath = path
		}
	}
}

// Prober runs login attempts against a single application.
type Prober struct {
	baseURL    string
	loginPath  string
	clientOpts []SessionOption
	newSession func() (*SessionClient, error)
}

func NewProber(baseURL string, opts ...ProberOption) *Prober {
	p := &Prober{
		baseURL:   strings.TrimRight(baseURL, "/"),
		loginPath: DefaultLoginPath,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.newSession == nil {
		clientOpts := p.clientOpts
		p.newSession = func() (*SessionClient, error) {
			return NewSessionClient(clientOpts...)
		}
	}
	return p
}

// LoginURL is where both the GET and the POST go.
func (p *Prober) LoginURL() string {
	path := p.loginPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return p.baseURL + path
}

// Probe performs one GET then at most one POST with a fresh session and
// classifies the result. It never returns an error: every failure is an
// Outcome.
func (p *Prober) Probe(ctx context.Context, cred Credential) Outcome {
	session, err := p.newSession()
	if err != nil {
		return ServerErrorOutcome(err.Error())
	}

	loginURL := p.LoginURL()

	page, err := session.Get(ctx, loginURL)
	if err != nil {
		return ServerErrorOutcome(transportDetail(err))
	}

	token, ok := ExtractToken(string(page.Body))
	if !ok {
		return TokenNotFoundOutcome()
	}

	fields := url.Values{}
	fields.Set(TokenField, token)
	fields.Set("email", cred.Email)
	fields.Set("password", cred.Password)

	resp, err := session.Post(ctx, loginURL, fields)
	if err != nil {
		return ServerErrorOutcome(transportDetail(err))
	}

	return Classify(resp)
}

// ProbeAll probes every credential in order. A failing credential does not
// stop the ones after it.
func (p *Prober) ProbeAll(ctx context.Context, creds []Credential) []Result {
	results := make([]Result, 0, len(creds))
	for _, cred := range creds {
		start := time.Now()
		outcome := p.Probe(ctx, cred)
		results = append(results, Result{
			Credential: cred,
			Outcome:    outcome,
			Elapsed:    time.Since(start),
		})
	}
	return results
}

// Classify maps the POST response onto an Outcome.
func Classify(resp *Response) Outcome {
	switch {
	case isRedirect(resp.StatusCode):
		values := resp.Header.Values("Location")
		if len(values) == 0 {
			return RedirectedOutcome(resp.StatusCode, "", false)
		}
		return RedirectedOutcome(resp.StatusCode, values[0], true)
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return NoRedirectOutcome()
	default:
		return HTTPStatusOutcome(resp.StatusCode)
	}
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

func transportDetail(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Error()
	}
	return err.Error()
}
