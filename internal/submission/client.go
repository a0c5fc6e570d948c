package submission

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/muurk/contactform/internal/logging"
	"github.com/muurk/contactform/internal/version"
)

const (
	// AcceptHeader is sent with every attempt.
	AcceptHeader = "application/json"

	// maxResponseBody caps how much of a response is kept for diagnostics.
	maxResponseBody = 4096
)

// Outcome is the terminal result of a single endpoint attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeHTTPRejected
	OutcomeNetworkError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeHTTPRejected:
		return "http_rejected"
	case OutcomeNetworkError:
		return "network_error"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// Attempt records one try against one endpoint.
type Attempt struct {
	EndpointIndex int
	Endpoint      string
	Outcome       Outcome
	StatusCode    int
	ResponseBody  string
	Err           error
	Latency       time.Duration
}

// Result describes a submission an endpoint accepted.
type Result struct {
	SubmissionID  string
	Endpoint      string
	EndpointIndex int
	StatusCode    int
	Attempts      []Attempt
}

// Client submits payloads to an ordered, fixed list of endpoints.
type Client struct {
	endpoints []string

	// HTTPClient performs the requests. Its Timeout is the only per-request
	// limit, zero means the transport default.
	HTTPClient *http.Client

	// UserAgent is sent when non-empty.
	UserAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. A nil client keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout on a copy of the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		var hc http.Client
		if c.HTTPClient != nil {
			hc = *c.HTTPClient
		}
		hc.Timeout = d
		c.HTTPClient = &hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.UserAgent = ua }
}

// NewClient creates a client for the given endpoints, tried in order.
// The list is copied so later changes by the caller have no effect.
func NewClient(endpoints []string, opts ...Option) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	for i, ep := range endpoints {
		u, err := url.Parse(ep)
		if err != nil {
			return nil, fmt.Errorf("endpoint %d: %w", i, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("endpoint %d: unsupported scheme %q", i, u.Scheme)
		}
	}

	c := &Client{
		endpoints:  append([]string(nil), endpoints...),
		HTTPClient: &http.Client{},
		UserAgent:  version.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	return c, nil
}

// Endpoints returns a copy of the endpoint list in priority order.
func (c *Client) Endpoints() []string {
	return append([]string(nil), c.endpoints...)
}

// Submit delivers p to the first endpoint that accepts it. Endpoints are
// tried one at a time and each is tried once. If all fail, Submit returns an
// *ExhaustedError after the last attempt has completed.
//
// A canceled ctx stops the fallback before the next endpoint is contacted and
// is reported as an ExhaustedError as well.
func (c *Client) Submit(ctx context.Context, p *Payload) (*Result, error) {
	encoded, err := p.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	id := NewID("sub")
	attempts := make([]Attempt, 0, len(c.endpoints))

	for i, endpoint := range c.endpoints {
		if ctxErr := ctx.Err(); ctxErr != nil {
			attempts = append(attempts, Attempt{
				EndpointIndex: i,
				Endpoint:      endpoint,
				Outcome:       OutcomeNetworkError,
				Err:           ClassifyNetworkError(ctxErr, endpoint),
			})
			break
		}

		a := c.attempt(ctx, i, endpoint, encoded)
		attempts = append(attempts, a)
		logging.LogSubmissionAttempt(id, i, endpoint, a.Outcome.String(), a.StatusCode, a.Latency, a.Err)

		if a.Outcome == OutcomeSuccess {
			return &Result{
				SubmissionID:  id,
				Endpoint:      endpoint,
				EndpointIndex: i,
				StatusCode:    a.StatusCode,
				Attempts:      attempts,
			}, nil
		}
	}

	exhausted := &ExhaustedError{SubmissionID: id, Attempts: attempts}
	logging.LogSubmissionExhausted(id, len(attempts), exhausted.Unwrap())
	return nil, exhausted
}

// attempt performs a single POST. It never returns an error directly, the
// failure is recorded on the Attempt.
func (c *Client) attempt(ctx context.Context, index int, endpoint string, enc *Encoded) Attempt {
	a := Attempt{EndpointIndex: index, Endpoint: endpoint}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(enc.Body))
	if err != nil {
		a.Outcome = OutcomeNetworkError
		a.Err = NewRequestError(endpoint, err)
		return a
	}
	req.Header.Set("Accept", AcceptHeader)
	req.Header.Set("Content-Type", enc.ContentType)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	a.Latency = time.Since(start)
	if err != nil {
		a.Outcome = OutcomeNetworkError
		a.Err = ClassifyNetworkError(err, endpoint)
		return a
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	a.StatusCode = resp.StatusCode
	a.ResponseBody = string(body)

	if !IsSuccess(resp.StatusCode) {
		a.Outcome = OutcomeHTTPRejected
		a.Err = NewRejectedError(endpoint, resp.StatusCode)
		return a
	}

	a.Outcome = OutcomeSuccess
	return a
}

// IsSuccess reports whether status is in the 2xx range.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
