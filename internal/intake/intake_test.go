package intake

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/contactform/internal/config"
	"github.com/muurk/contactform/internal/submission"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg.FormID == "" {
		cfg.FormID = "local"
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Feed().Close()
		ts.Close()
	})
	return s, ts
}

func samplePayload() *submission.Payload {
	return submission.NewPayload().
		Add("name", "Jane Doe").
		Add("email", "jane@example.com").
		Add("phone", "").
		Add("message", "I would like more information please.")
}

func TestNew_RequiresFormID(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New() with empty form id should fail")
	}
}

func TestFromSettings(t *testing.T) {
	settings := config.Default().Intake
	cfg := FromSettings(settings)
	if cfg.Listen != settings.Listen || cfg.FormID != settings.FormID || cfg.Advertise != settings.Advertise {
		t.Errorf("FromSettings() = %+v, from %+v", cfg, settings)
	}
	cfg.AllowedOrigins[0] = "changed"
	if settings.AllowedOrigins[0] == "changed" {
		t.Error("FromSettings() should copy allowed origins")
	}
}

func TestSubmit_ClientRoundTrip(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	client, err := submission.NewClient([]string{ts.URL + "/f/local"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	res, err := client.Submit(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", res.StatusCode)
	}

	leads := s.Store().List()
	if len(leads) != 1 {
		t.Fatalf("stored %d leads, want 1", len(leads))
	}
	lead := leads[0]
	if !strings.HasPrefix(lead.ID, "lead_") {
		t.Errorf("lead ID = %q, want lead_ prefix", lead.ID)
	}
	wantOrder := []string{"name", "email", "phone", "message"}
	if len(lead.Fields) != len(wantOrder) {
		t.Fatalf("lead has %d fields, want %d", len(lead.Fields), len(wantOrder))
	}
	for i, name := range wantOrder {
		if lead.Fields[i].Name != name {
			t.Errorf("field %d = %q, want %q", i, lead.Fields[i].Name, name)
		}
	}
	if v, _ := lead.Get("email"); v != "jane@example.com" {
		t.Errorf("email = %q", v)
	}
	if v, ok := lead.Get("phone"); !ok || v != "" {
		t.Errorf("phone = %q, %v; want empty value present", v, ok)
	}
	if !strings.HasPrefix(lead.UserAgent, "contactform/") {
		t.Errorf("user agent = %q", lead.UserAgent)
	}

	body := res.Attempts[0].ResponseBody
	var resp SubmitResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("response %q is not JSON: %v", body, err)
	}
	if !resp.OK || resp.ID != lead.ID {
		t.Errorf("response = %+v, want ok with id %s", resp, lead.ID)
	}
}

func TestSubmit_URLEncoded(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	form := url.Values{"message": {"hello there friend"}, "email": {"a@b.co"}}
	resp, err := http.PostForm(ts.URL+"/f/local", form)
	if err != nil {
		t.Fatalf("PostForm() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	fields := s.Store().List()[0].Fields
	if fields[0].Name != "email" || fields[1].Name != "message" {
		t.Errorf("urlencoded fields should be sorted, got %+v", fields)
	}
}

func TestSubmit_Errors(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		wantStatus  int
	}{
		{"unknown form", "/f/other", "application/x-www-form-urlencoded", "a=b", http.StatusNotFound},
		{"unsupported content type", "/f/local", "application/json", `{"a":"b"}`, http.StatusBadRequest},
		{"missing content type", "/f/local", "", "a=b", http.StatusBadRequest},
		{"empty body", "/f/local", "application/x-www-form-urlencoded", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, ts.URL+tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestRejectMode_DrivesFallback(t *testing.T) {
	rejecting, down := newTestServer(t, Config{Reject: true})
	accepting, up := newTestServer(t, Config{})

	client, err := submission.NewClient([]string{down.URL + "/f/local", up.URL + "/f/local"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	res, err := client.Submit(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.EndpointIndex != 1 {
		t.Errorf("EndpointIndex = %d, want 1", res.EndpointIndex)
	}
	if res.Attempts[0].StatusCode != http.StatusServiceUnavailable {
		t.Errorf("first attempt status = %d, want 503", res.Attempts[0].StatusCode)
	}
	if rejecting.Store().Len() != 0 || accepting.Store().Len() != 1 {
		t.Errorf("leads = %d/%d, want 0/1", rejecting.Store().Len(), accepting.Store().Len())
	}
}

func TestSetMode(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/mode", strings.NewReader(`{"reject":true}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()
	if !s.Rejecting() {
		t.Fatal("PUT /mode should enable reject mode")
	}

	resp, err = http.PostForm(ts.URL+"/f/local", url.Values{"a": {"b"}})
	if err != nil {
		t.Fatalf("PostForm() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/mode", strings.NewReader("nope"))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad mode body status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthAndLeads(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp, err := http.PostForm(ts.URL+"/f/local", url.Values{"name": {"Jo"}})
	if err != nil {
		t.Fatalf("PostForm() error = %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	var health map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if health["status"] != "ok" || health["leads"] != float64(1) {
		t.Errorf("health = %v", health)
	}

	resp, err = http.Get(ts.URL + "/leads")
	if err != nil {
		t.Fatalf("GET /leads error = %v", err)
	}
	var leads []Lead
	_ = json.NewDecoder(resp.Body).Decode(&leads)
	resp.Body.Close()
	if len(leads) != 1 || leads[0].Fields[0].Value != "Jo" {
		t.Errorf("leads = %+v", leads)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t, Config{AllowedOrigins: []string{"https://example.com"}})

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/f/local", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestStore_Capacity(t *testing.T) {
	s := NewStore(2)
	s.Add(Lead{ID: "a"})
	s.Add(Lead{ID: "b"})
	s.Add(Lead{ID: "c"})

	leads := s.List()
	if len(leads) != 2 || leads[0].ID != "b" || leads[1].ID != "c" {
		t.Errorf("List() = %+v, want [b c]", leads)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFeed_StreamsLeads(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	wsURL, err := FeedURL(ts.URL)
	if err != nil {
		t.Fatalf("FeedURL() error = %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return s.GetActiveConnections() == 1 })

	resp, err := http.PostForm(ts.URL+"/f/local", url.Values{"name": {"Jo"}})
	if err != nil {
		t.Fatalf("PostForm() error = %v", err)
	}
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var lead Lead
	if err := conn.ReadJSON(&lead); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if v, _ := lead.Get("name"); v != "Jo" {
		t.Errorf("streamed lead name = %q", v)
	}

	conn.Close()
	waitFor(t, func() bool { return s.GetActiveConnections() == 0 })
}

func TestWatch(t *testing.T) {
	s, ts := newTestServer(t, Config{})
	wsURL, _ := FeedURL(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan Lead, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, wsURL, func(l Lead) {
			got <- l
			cancel()
		})
	}()
	waitFor(t, func() bool { return s.GetActiveConnections() == 1 })

	resp, err := http.PostForm(ts.URL+"/f/local", url.Values{"email": {"x@y.zz"}})
	if err != nil {
		t.Fatalf("PostForm() error = %v", err)
	}
	resp.Body.Close()

	select {
	case l := <-got:
		if v, _ := l.Get("email"); v != "x@y.zz" {
			t.Errorf("email = %q", v)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no lead received")
	}
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestFeedURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"http://127.0.0.1:8787", "ws://127.0.0.1:8787/ws", false},
		{"https://intake.example.com/", "wss://intake.example.com/ws", false},
		{"ftp://x", "", true},
		{"http://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FeedURL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FeedURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FeedURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServer_ListenServeShutdown(t *testing.T) {
	s, err := New(Config{Listen: "127.0.0.1:0", FormID: "local"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	served := make(chan error, 1)
	go func() { served <- s.Serve() }()

	if !strings.HasSuffix(s.EndpointURL(), "/f/local") || strings.Contains(s.EndpointURL(), ":0/") {
		t.Errorf("EndpointURL() = %q", s.EndpointURL())
	}
	resp, err := http.Get("http://" + s.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	resp.Body.Close()

	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := <-served; err != nil {
		t.Errorf("Serve() error = %v", err)
	}
}
