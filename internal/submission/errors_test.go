package submission

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func wrapURL(err error) error {
	return &url.Error{Op: "Post", URL: "https://a.example/f", Err: err}
}

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantType    ErrorType
		wantSubtype NetworkErrorSubtype
	}{
		{
			name:        "timeout",
			err:         wrapURL(&net.OpError{Op: "dial", Net: "tcp", Err: timeoutError{}}),
			wantType:    ErrTypeTimeout,
			wantSubtype: NetworkErrorTimeout,
		},
		{
			name:        "connection refused",
			err:         wrapURL(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}),
			wantType:    ErrTypeConnectionRefused,
			wantSubtype: NetworkErrorConnectionRefused,
		},
		{
			name:        "dns",
			err:         wrapURL(&net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}),
			wantType:    ErrTypeDNS,
			wantSubtype: NetworkErrorDNS,
		},
		{
			name:        "host unreachable",
			err:         &net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH},
			wantType:    ErrTypeNetwork,
			wantSubtype: NetworkErrorHostUnreachable,
		},
		{
			name:        "network unreachable",
			err:         &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ENETUNREACH},
			wantType:    ErrTypeNetwork,
			wantSubtype: NetworkErrorNetworkUnreachable,
		},
		{
			name:     "canceled",
			err:      wrapURL(context.Canceled),
			wantType: ErrTypeCanceled,
		},
		{
			name:        "generic",
			err:         errors.New("connection reset"),
			wantType:    ErrTypeNetwork,
			wantSubtype: NetworkErrorGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := ClassifyNetworkError(tt.err, "https://a.example/f")
			if te == nil {
				t.Fatal("ClassifyNetworkError() = nil")
			}
			if te.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", te.Type, tt.wantType)
			}
			if te.NetworkSubtype != tt.wantSubtype {
				t.Errorf("NetworkSubtype = %v, want %v", te.NetworkSubtype, tt.wantSubtype)
			}
			if te.Endpoint != "https://a.example/f" {
				t.Errorf("Endpoint = %q", te.Endpoint)
			}
		})
	}

	if ClassifyNetworkError(nil, "") != nil {
		t.Error("ClassifyNetworkError(nil) should be nil")
	}
}

func TestErrorPredicates(t *testing.T) {
	rejected := NewRejectedError("https://a.example/f", 422)
	network := ClassifyNetworkError(syscall.ECONNREFUSED, "https://b.example/f")
	exhausted := &ExhaustedError{
		SubmissionID: "sub_1",
		Attempts: []Attempt{
			{EndpointIndex: 0, Outcome: OutcomeHTTPRejected, Err: rejected},
		},
	}

	if !IsRejected(rejected) || IsNetworkError(rejected) {
		t.Error("rejection misclassified")
	}
	if !IsTransportError(network) {
		t.Error("IsTransportError(network) = false")
	}
	if !IsExhausted(exhausted) || IsExhausted(rejected) {
		t.Error("IsExhausted misclassified")
	}
	if !IsRejected(exhausted) {
		t.Error("exhausted error should unwrap to the last rejection")
	}
	if IsTransportError(errors.New("plain")) {
		t.Error("plain error is not a TransportError")
	}
}

func TestExhaustedErrorMessage(t *testing.T) {
	empty := &ExhaustedError{}
	if empty.Unwrap() != nil || empty.Last() != nil {
		t.Error("empty ExhaustedError should unwrap to nil")
	}
	if !strings.Contains(empty.Error(), "no endpoints") {
		t.Errorf("Error() = %q", empty.Error())
	}

	e := &ExhaustedError{Attempts: []Attempt{{Err: NewRejectedError("x", 500)}, {Err: NewRejectedError("y", 503)}}}
	if !strings.Contains(e.Error(), "2 endpoint(s)") || !strings.Contains(e.Error(), "503") {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewRejectedError("x", 404), "Endpoint rejected submission (HTTP 404)"},
		{&TransportError{Type: ErrTypeTimeout}, "Endpoint not responding (timeout)"},
		{&TransportError{Type: ErrTypeConnectionRefused}, "Endpoint refused connection"},
		{&TransportError{Type: ErrTypeNetwork, NetworkSubtype: NetworkErrorHostUnreachable}, "Endpoint unreachable - check network connection"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		if got := GetShortErrorMessage(tt.err); got != tt.want {
			t.Errorf("GetShortErrorMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	hint := GetTroubleshootingHint(&TransportError{Type: ErrTypeConnectionRefused})
	if !strings.Contains(hint, "contactform-intake serve") {
		t.Errorf("refused hint = %q", hint)
	}
	if !strings.Contains(GetTroubleshootingHint(NewRejectedError("x", 502)), "HTTP 502") {
		t.Error("rejection hint should mention the status")
	}
	if GetTroubleshootingHint(errors.New("x")) == "" {
		t.Error("hint for unknown error should not be empty")
	}
}
