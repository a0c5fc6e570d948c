package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/muurk/contactform/internal/urls"
)

// Service is a contact form intake found on the local network.
type Service struct {
	// Instance is the mDNS instance name (e.g., "contactform-local")
	Instance string `json:"instance"`

	// FormID is the path segment after /f/
	FormID string `json:"form_id"`

	// Hostname is the advertised host (e.g., "studio.local.")
	Hostname string `json:"hostname"`

	// IP is the address to connect to, IPv4 preferred
	IP string `json:"ip"`

	// Port is the HTTP port
	Port int `json:"port"`

	// Metadata contains the TXT record data
	Metadata map[string]string `json:"metadata,omitempty"`

	// DiscoveredAt is when the service was seen
	DiscoveredAt time.Time `json:"discovered_at"`
}

// String returns a human-readable string representation of the service
func (s *Service) String() string {
	return fmt.Sprintf("%s (form %s) at %s", s.Instance, s.FormID, s.BaseURL())
}

// BaseURL returns the HTTP base URL for the service
func (s *Service) BaseURL() string {
	return "http://" + net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// EndpointURL returns the URL a submission client should POST to.
func (s *Service) EndpointURL() string {
	path := s.GetMetadata(txtPath)
	if path == "" {
		path = urls.LocalIntakePath
	}
	return s.BaseURL() + path + s.FormID
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
