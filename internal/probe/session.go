package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

const (
	DefaultTimeout   = 5 * time.Second
	DefaultUserAgent = "Mozilla/5.0"
)

// Response is the raw result of one request: nothing is followed or decoded.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// TransportError means the request never produced an HTTP response
// (DNS, refused connection, timeout, truncated body...).
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type sessionConfig struct {
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
}

type SessionOption func(*sessionConfig)

// WithTimeout bounds each request. Zero or negative keeps the default.
func WithTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithUserAgent(ua string) SessionOption {
	return func(c *sessionConfig) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithTransport(rt http.RoundTripper) SessionOption {
	return func(c *sessionConfig) {
		c.transport = rt
	}
}

// SessionClient keeps cookies across calls and never follows redirects.
// One client belongs to one login attempt.
type SessionClient struct {
	client    *http.Client
	userAgent string
}

func NewSessionClient(opts ...SessionOption) (*SessionClient, error) {
	cfg := sessionConfig{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &SessionClient{
		client: &http.Client{
			Jar:       jar,
			Timeout:   cfg.timeout,
			Transport: cfg.transport,
			// Hand every 3xx back to the caller untouched.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: cfg.userAgent,
	}, nil
}

// Get fetches rawURL with the session's cookies.
func (s *SessionClient) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{Op: http.MethodGet, URL: rawURL, Err: err}
	}
	return s.do(req)
}

// Post submits fields as an urlencoded form. A 3xx comes back as a normal
// Response carrying its Location header.
func (s *SessionClient) Post(ctx context.Context, rawURL string, fields url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(fields.Encode()))
	if err != nil {
		return nil, &TransportError{Op: http.MethodPost, URL: rawURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

// Cookies returns what the jar would send to rawURL.
func (s *SessionClient) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return s.client.Jar.Cookies(u)
}

func (s *SessionClient) do(req *http.Request) (*Response, error) {
	// Some servers reject requests with no User-Agent.
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, &TransportError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: req.Method, URL: req.URL.String(), Err: fmt.Errorf("failed to read body: %w", err)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
