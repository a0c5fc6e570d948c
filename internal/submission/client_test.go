package submission

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// recorder captures every request an httptest server receives.
type recorder struct {
	mu       sync.Mutex
	bodies   [][]byte
	headers  []http.Header
	received []time.Time
}

func (r *recorder) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.bodies = append(r.bodies, body)
		r.headers = append(r.headers, req.Header.Clone())
		r.received = append(r.received, time.Now())
		r.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

func samplePayload() *Payload {
	return NewPayload().
		Add("name", "Jo").
		Add("email", "jo@x.com").
		Add("phone", "").
		Add("message", "Hello there!")
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		endpoints []string
		wantErr   bool
	}{
		{"single endpoint", []string{"https://formspree.io/f/abc"}, false},
		{"two endpoints", []string{"https://a.example/f", "http://b.example/f"}, false},
		{"empty list", nil, true},
		{"bad scheme", []string{"ftp://a.example/f"}, true},
		{"unparseable", []string{"http://[::1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.endpoints)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := NewClient(nil); !errors.Is(err, ErrNoEndpoints) {
		t.Errorf("NewClient(nil) error = %v, want ErrNoEndpoints", err)
	}
}

func TestNewClientCopiesEndpoints(t *testing.T) {
	eps := []string{"https://a.example/f", "https://b.example/f"}
	c, err := NewClient(eps)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	eps[0] = "https://changed.example/f"
	if c.Endpoints()[0] != "https://a.example/f" {
		t.Error("client endpoint list changed after caller mutation")
	}
}

func TestWithTimeoutDoesNotMutateSharedClient(t *testing.T) {
	shared := &http.Client{}
	c, err := NewClient([]string{"https://a.example/f"}, WithHTTPClient(shared), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if shared.Timeout != 0 {
		t.Errorf("shared client Timeout = %v, want 0", shared.Timeout)
	}
	if c.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("client Timeout = %v, want 5s", c.HTTPClient.Timeout)
	}
}

func TestNilHTTPClientKeepsDefault(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want time.Duration
	}{
		{"nil client", []Option{WithHTTPClient(nil)}, 0},
		{"nil client then timeout", []Option{WithHTTPClient(nil), WithTimeout(2 * time.Second)}, 2 * time.Second},
		{"nil field then timeout", []Option{func(c *Client) { c.HTTPClient = nil }, WithTimeout(time.Second)}, time.Second},
		{"nil field", []Option{func(c *Client) { c.HTTPClient = nil }}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient([]string{"https://a.example/f"}, tt.opts...)
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if c.HTTPClient == nil {
				t.Fatal("HTTPClient is nil")
			}
			if c.HTTPClient.Timeout != tt.want {
				t.Errorf("Timeout = %v, want %v", c.HTTPClient.Timeout, tt.want)
			}
		})
	}
}

func TestSubmit_FirstEndpointSucceeds(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	s1 := httptest.NewServer(first.handler(http.StatusOK))
	defer s1.Close()
	s2 := httptest.NewServer(second.handler(http.StatusOK))
	defer s2.Close()

	c, _ := NewClient([]string{s1.URL, s2.URL})
	res, err := c.Submit(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if res.EndpointIndex != 0 || res.Endpoint != s1.URL {
		t.Errorf("result attributed to %d (%s), want 0", res.EndpointIndex, res.Endpoint)
	}
	if second.count() != 0 {
		t.Errorf("second endpoint received %d requests, want 0", second.count())
	}
	if !strings.HasPrefix(res.SubmissionID, "sub_") {
		t.Errorf("SubmissionID = %q, want sub_ prefix", res.SubmissionID)
	}
}

func TestSubmit_FallbackOnRejection(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	s1 := httptest.NewServer(first.handler(http.StatusInternalServerError))
	defer s1.Close()
	s2 := httptest.NewServer(second.handler(http.StatusCreated))
	defer s2.Close()

	c, _ := NewClient([]string{s1.URL, s2.URL})
	res, err := c.Submit(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if res.EndpointIndex != 1 {
		t.Errorf("EndpointIndex = %d, want 1", res.EndpointIndex)
	}
	if res.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want 201", res.StatusCode)
	}
	if first.count() != 1 || second.count() != 1 {
		t.Errorf("request counts = %d/%d, want 1/1", first.count(), second.count())
	}
	if len(res.Attempts) != 2 || res.Attempts[0].Outcome != OutcomeHTTPRejected {
		t.Errorf("attempts = %+v", res.Attempts)
	}
	if !IsRejected(res.Attempts[0].Err) {
		t.Errorf("first attempt error = %v, want rejection", res.Attempts[0].Err)
	}
}

func TestSubmit_FallbackOnNetworkError(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	ok := &recorder{}
	s2 := httptest.NewServer(ok.handler(http.StatusOK))
	defer s2.Close()

	c, _ := NewClient([]string{deadURL, s2.URL})
	res, err := c.Submit(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.EndpointIndex != 1 {
		t.Errorf("EndpointIndex = %d, want 1", res.EndpointIndex)
	}
	if res.Attempts[0].Outcome != OutcomeNetworkError {
		t.Errorf("first outcome = %v, want network_error", res.Attempts[0].Outcome)
	}
	if !IsNetworkError(res.Attempts[0].Err) {
		t.Errorf("first attempt error = %v, want network error", res.Attempts[0].Err)
	}
}

func TestSubmit_Exhausted(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	s1 := httptest.NewServer(first.handler(http.StatusBadRequest))
	defer s1.Close()
	s2 := httptest.NewServer(second.handler(http.StatusServiceUnavailable))
	defer s2.Close()

	c, _ := NewClient([]string{s1.URL, s2.URL})
	res, err := c.Submit(context.Background(), samplePayload())
	if res != nil {
		t.Errorf("Submit() result = %+v, want nil", res)
	}
	if !IsExhausted(err) {
		t.Fatalf("Submit() error = %v, want ExhaustedError", err)
	}

	var ee *ExhaustedError
	errors.As(err, &ee)
	if len(ee.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(ee.Attempts))
	}
	if ee.Last().StatusCode != http.StatusServiceUnavailable {
		t.Errorf("last status = %d, want 503", ee.Last().StatusCode)
	}
	// The aggregate failure wraps the last endpoint's error.
	var te *TransportError
	if !errors.As(err, &te) || te.Endpoint != s2.URL {
		t.Errorf("unwrapped error = %v, want last endpoint's TransportError", te)
	}
	if first.count() != 1 || second.count() != 1 {
		t.Errorf("each endpoint should be tried exactly once, got %d/%d", first.count(), second.count())
	}
}

func TestSubmit_Sequential(t *testing.T) {
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	slow := func(status int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()
			time.Sleep(20 * time.Millisecond)
			mu.Lock()
			inFlight--
			mu.Unlock()
			w.WriteHeader(status)
		}
	}
	s1 := httptest.NewServer(slow(http.StatusBadGateway))
	defer s1.Close()
	s2 := httptest.NewServer(slow(http.StatusBadGateway))
	defer s2.Close()
	s3 := httptest.NewServer(slow(http.StatusOK))
	defer s3.Close()

	c, _ := NewClient([]string{s1.URL, s2.URL, s3.URL})
	if _, err := c.Submit(context.Background(), samplePayload()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if maxInFlight != 1 {
		t.Errorf("max concurrent requests = %d, want 1", maxInFlight)
	}
}

func TestSubmit_IdenticalBodyAndHeaders(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	s1 := httptest.NewServer(first.handler(http.StatusForbidden))
	defer s1.Close()
	s2 := httptest.NewServer(second.handler(http.StatusOK))
	defer s2.Close()

	c, _ := NewClient([]string{s1.URL, s2.URL})
	if _, err := c.Submit(context.Background(), samplePayload()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if string(first.bodies[0]) != string(second.bodies[0]) {
		t.Error("endpoints received different bodies")
	}
	for _, h := range []string{"Accept", "Content-Type", "User-Agent"} {
		if first.headers[0].Get(h) != second.headers[0].Get(h) {
			t.Errorf("header %s differs: %q vs %q", h, first.headers[0].Get(h), second.headers[0].Get(h))
		}
	}
	if got := first.headers[0].Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q, want application/json", got)
	}

	mediaType, params, err := mime.ParseMediaType(first.headers[0].Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("Content-Type = %q (%v), want multipart/form-data", first.headers[0].Get("Content-Type"), err)
	}
	form, err := multipart.NewReader(strings.NewReader(string(first.bodies[0])), params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm() error = %v", err)
	}
	if got := form.Value["message"]; len(got) != 1 || got[0] != "Hello there!" {
		t.Errorf("message field = %v", got)
	}
	if got := form.Value["phone"]; len(got) != 1 || got[0] != "" {
		t.Errorf("phone field = %v, want one empty value", got)
	}
}

func TestSubmit_CanceledContext(t *testing.T) {
	rec := &recorder{}
	s := httptest.NewServer(rec.handler(http.StatusOK))
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := NewClient([]string{s.URL})
	_, err := c.Submit(ctx, samplePayload())
	if !IsExhausted(err) {
		t.Fatalf("Submit() error = %v, want ExhaustedError", err)
	}
	if rec.count() != 0 {
		t.Errorf("endpoint received %d requests after cancel", rec.count())
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled, got %v", err)
	}
}

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{199, false},
		{200, true},
		{204, true},
		{299, true},
		{300, false},
		{404, false},
		{500, false},
	}
	for _, tt := range tests {
		if got := IsSuccess(tt.status); got != tt.want {
			t.Errorf("IsSuccess(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
