package submission

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrNoEndpoints is returned by NewClient when the endpoint list is empty.
var ErrNoEndpoints = errors.New("at least one endpoint is required")

// ErrorType represents the category of a failed attempt
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request did not complete in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the endpoint refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the endpoint host could not be resolved
	ErrTypeDNS
	// ErrTypeRejected indicates the endpoint answered with a non-2xx status
	ErrTypeRejected
	// ErrTypeRequest indicates the request could not be built
	ErrTypeRequest
	// ErrTypeCanceled indicates the caller's context ended the submission
	ErrTypeCanceled
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeRejected:
		return "Rejected"
	case ErrTypeRequest:
		return "Request Error"
	case ErrTypeCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// TransportError describes why one endpoint did not accept a submission.
type TransportError struct {
	Type           ErrorType
	Message        string
	Endpoint       string
	StatusCode     int // set for ErrTypeRejected
	Err            error
	NetworkSubtype NetworkErrorSubtype
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a TransportError
// with a specific type.
func ClassifyNetworkError(err error, endpoint string) *TransportError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return &TransportError{
			Type:     ErrTypeCanceled,
			Message:  "Submission canceled",
			Endpoint: endpoint,
			Err:      err,
		}
	}

	if os.IsTimeout(err) {
		return &TransportError{
			Type:           ErrTypeTimeout,
			Message:        "Request timed out",
			Endpoint:       endpoint,
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &TransportError{
			Type:           ErrTypeDNS,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Endpoint:       endpoint,
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &TransportError{
				Type:           ErrTypeConnectionRefused,
				Message:        "Endpoint refused connection",
				Endpoint:       endpoint,
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
			}
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return &TransportError{
				Type:           ErrTypeNetwork,
				Message:        "Host unreachable",
				Endpoint:       endpoint,
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
			}
		}
		if errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return &TransportError{
				Type:           ErrTypeNetwork,
				Message:        "Network unreachable",
				Endpoint:       endpoint,
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Recursively classify the underlying error
		return ClassifyNetworkError(urlErr.Err, endpoint)
	}

	return &TransportError{
		Type:           ErrTypeNetwork,
		Message:        "Network error occurred",
		Endpoint:       endpoint,
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
	}
}

// NewRejectedError creates an error for a non-2xx response.
func NewRejectedError(endpoint string, statusCode int) *TransportError {
	return &TransportError{
		Type:       ErrTypeRejected,
		Message:    fmt.Sprintf("endpoint returned status %d", statusCode),
		Endpoint:   endpoint,
		StatusCode: statusCode,
	}
}

// NewRequestError creates an error for a request that could not be built.
func NewRequestError(endpoint string, err error) *TransportError {
	return &TransportError{
		Type:     ErrTypeRequest,
		Message:  "failed to create request",
		Endpoint: endpoint,
		Err:      err,
	}
}

// ExhaustedError is returned when no endpoint accepted the submission.
type ExhaustedError struct {
	SubmissionID string
	Attempts     []Attempt
}

func (e *ExhaustedError) Error() string {
	last := e.Last()
	if last == nil {
		return "submission failed: no endpoints attempted"
	}
	return fmt.Sprintf("submission failed after %d endpoint(s): %v", len(e.Attempts), last.Err)
}

// Unwrap returns the last attempt's error.
func (e *ExhaustedError) Unwrap() error {
	if last := e.Last(); last != nil {
		return last.Err
	}
	return nil
}

// Last returns the final attempt, or nil.
func (e *ExhaustedError) Last() *Attempt {
	if len(e.Attempts) == 0 {
		return nil
	}
	return &e.Attempts[len(e.Attempts)-1]
}

// IsTransportError checks if err is or wraps a TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Type == ErrTypeNetwork ||
			te.Type == ErrTypeTimeout ||
			te.Type == ErrTypeConnectionRefused ||
			te.Type == ErrTypeDNS
	}
	return false
}

// IsRejected checks if an error is a non-2xx rejection
func IsRejected(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Type == ErrTypeRejected
}

// IsExhausted checks if err reports that every endpoint failed
func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var te *TransportError
	if !errors.As(err, &te) {
		return "An unexpected error occurred. Please try again."
	}

	switch te.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The intake service did not respond in time.",
			"Troubleshooting:",
			"  • Check your internet connection",
			"  • Try increasing submission.timeout in the config file",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The intake service refused the connection.",
			"Troubleshooting:",
			"  • If this is a local mock, start it with: contactform-intake serve",
			"  • Verify the endpoint port",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the intake hostname.",
			"Troubleshooting:",
			"  • Check the endpoint URL for typos",
			"  • Check your network DNS settings",
		}, "\n")

	case ErrTypeRejected:
		if te.StatusCode >= 500 {
			return fmt.Sprintf("The intake service failed (HTTP %d). Try again later.", te.StatusCode)
		}
		return fmt.Sprintf("The intake service rejected the form (HTTP %d). Check the endpoint form id.", te.StatusCode)

	case ErrTypeNetwork:
		switch te.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "The intake host is not reachable. Check your network connection."
		case NetworkErrorNetworkUnreachable:
			return "Your computer has no route to the intake service. Check that you are online."
		default:
			return "Network communication failed. Check your connection and try again."
		}

	case ErrTypeRequest:
		return "The endpoint URL is invalid. Check the endpoints list in the config file."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var te *TransportError
	if !errors.As(err, &te) {
		return err.Error()
	}

	switch te.Type {
	case ErrTypeTimeout:
		return "Endpoint not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Endpoint refused connection"
	case ErrTypeDNS:
		return "Cannot resolve endpoint hostname"
	case ErrTypeRejected:
		return fmt.Sprintf("Endpoint rejected submission (HTTP %d)", te.StatusCode)
	case ErrTypeCanceled:
		return "Submission canceled"
	case ErrTypeNetwork:
		switch te.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Endpoint unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check connection"
		default:
			return "Network error - check connection"
		}
	default:
		return te.Message
	}
}
