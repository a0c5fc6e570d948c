package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func newEntry(instance, host string, port int, ips []string, text []string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.Text = text
	for _, ip := range ips {
		parsed := net.ParseIP(ip)
		if parsed.To4() != nil {
			e.AddrIPv4 = append(e.AddrIPv4, parsed)
		} else {
			e.AddrIPv6 = append(e.AddrIPv6, parsed)
		}
	}
	return e
}

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantForm     string
		wantEndpoint string
	}{
		{
			name:         "form id from TXT record",
			entry:        newEntry("studio intake", "studio.local.", 8787, []string{"192.168.4.16"}, []string{"form=leads", "path=/f/"}),
			wantForm:     "leads",
			wantEndpoint: "http://192.168.4.16:8787/f/leads",
		},
		{
			name:         "form id from instance name",
			entry:        newEntry("contactform-local", "studio.local.", 9000, []string{"10.0.0.5"}, nil),
			wantForm:     "local",
			wantEndpoint: "http://10.0.0.5:9000/f/local",
		},
		{
			name:         "default port",
			entry:        newEntry("contactform-local", "studio.local.", 0, []string{"10.0.0.5"}, nil),
			wantForm:     "local",
			wantEndpoint: "http://10.0.0.5:8787/f/local",
		},
		{
			name:         "IPv4 preferred over IPv6",
			entry:        newEntry("contactform-local", "studio.local.", 8787, []string{"fe80::1", "192.168.1.100"}, nil),
			wantForm:     "local",
			wantEndpoint: "http://192.168.1.100:8787/f/local",
		},
		{
			name:         "IPv6 fallback",
			entry:        newEntry("contactform-local", "studio.local.", 8787, []string{"fe80::1"}, nil),
			wantForm:     "local",
			wantEndpoint: "http://[fe80::1]:8787/f/local",
		},
		{
			name:         "custom path",
			entry:        newEntry("contactform-local", "studio.local.", 8787, []string{"10.0.0.5"}, []string{"path=/intake/"}),
			wantForm:     "local",
			wantEndpoint: "http://10.0.0.5:8787/intake/local",
		},
		{
			name:    "no address",
			entry:   newEntry("contactform-local", "studio.local.", 8787, nil, nil),
			wantNil: true,
		},
		{
			name:    "unrelated instance without form",
			entry:   newEntry("printer", "printer.local.", 80, []string{"10.0.0.9"}, []string{"path=/"}),
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if svc != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", svc)
				}
				return
			}
			if svc == nil {
				t.Fatal("parseServiceEntry() = nil, want service")
			}
			if svc.FormID != tt.wantForm {
				t.Errorf("FormID = %q, want %q", svc.FormID, tt.wantForm)
			}
			if got := svc.EndpointURL(); got != tt.wantEndpoint {
				t.Errorf("EndpointURL() = %q, want %q", got, tt.wantEndpoint)
			}
			if time.Since(svc.DiscoveredAt) > time.Second {
				t.Errorf("DiscoveredAt is not recent: %v", svc.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := newEntry("contactform-local", "studio.local.", 8787, []string{"192.168.4.16"},
		[]string{"txtvers=1", "form=local", "flag", "path=/f/"})

	svc := scanner.parseServiceEntry(entry)
	if svc == nil {
		t.Fatal("parseServiceEntry() = nil, want service")
	}

	expected := map[string]string{
		"txtvers": "1",
		"form":    "local",
		"flag":    "",
		"path":    "/f/",
	}
	if len(svc.Metadata) != len(expected) {
		t.Errorf("Metadata has %d entries, want %d", len(svc.Metadata), len(expected))
	}
	for key, want := range expected {
		if got, ok := svc.Metadata[key]; !ok {
			t.Errorf("Metadata missing key %q", key)
		} else if got != want {
			t.Errorf("Metadata[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestInstancePattern(t *testing.T) {
	tests := []struct {
		instance    string
		shouldMatch bool
		formID      string
	}{
		{"contactform-local", true, "local"},
		{"contactform-8bIc0Q0h8", true, "8bIc0Q0h8"},
		{"contactform-", false, ""},
		{"contactform-a-b", false, ""},
		{"Contactform-local", false, ""},
		{"printer", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.instance, func(t *testing.T) {
			matches := instancePattern.FindStringSubmatch(tt.instance)
			if tt.shouldMatch {
				if len(matches) < 2 {
					t.Fatalf("instancePattern did not match %q", tt.instance)
				}
				if matches[1] != tt.formID {
					t.Errorf("form id = %q, want %q", matches[1], tt.formID)
				}
			} else if matches != nil {
				t.Errorf("instancePattern matched %q, want no match", tt.instance)
			}
		})
	}
}

func TestAnnouncement_Text(t *testing.T) {
	a := Announcement{Instance: "contactform-local", Port: 8787, FormID: "local"}
	entry := newEntry(a.Instance, "studio.local.", a.Port, []string{"127.0.0.1"}, a.Text())

	svc := NewScanner().parseServiceEntry(entry)
	if svc == nil {
		t.Fatal("announced TXT records did not parse")
	}
	if got, want := svc.EndpointURL(), "http://127.0.0.1:8787/f/local"; got != want {
		t.Errorf("EndpointURL() = %q, want %q", got, want)
	}
}

func TestAdvertise_Validation(t *testing.T) {
	if _, err := Advertise(Announcement{Port: 8787}); err == nil {
		t.Error("Advertise() without form id should fail")
	}
	if _, err := Advertise(Announcement{FormID: "local"}); err == nil {
		t.Error("Advertise() without port should fail")
	}
}

// Live mDNS browsing needs a multicast-capable network and is not covered here.
