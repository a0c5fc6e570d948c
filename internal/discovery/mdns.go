package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/contactform/internal/logging"
	"github.com/muurk/contactform/internal/urls"
)

const (
	// ServiceType is the mDNS service type local intakes advertise
	ServiceType = "_contactform._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for service discovery
	DefaultScanTimeout = 3 * time.Second

	// DefaultPort is used when an answer carries no port
	DefaultPort = 8787

	txtForm    = "form"
	txtPath    = "path"
	txtVersion = "txtvers"
)

// instancePattern matches instance names announced by Advertise
// (e.g., "contactform-local") and captures the form id.
var instancePattern = regexp.MustCompile(`^contactform-([A-Za-z0-9]+)$`)

// Scanner handles mDNS service discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan discovers all intake services on the local network.
func (s *Scanner) Scan(ctx context.Context) ([]*Service, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu       sync.Mutex
		services []*Service
		seen     = make(map[string]bool)
		wg       sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			var entry *zeroconf.ServiceEntry
			select {
			case <-ctx.Done():
				return
			case entry = <-entries:
			}
			svc := s.parseServiceEntry(entry)
			if svc == nil {
				continue
			}
			key := svc.EndpointURL()
			mu.Lock()
			if !seen[key] {
				seen[key] = true
				services = append(services, svc)
				logging.Debug("Discovered intake service",
					zap.String("instance", svc.Instance),
					zap.String("endpoint", key),
				)
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	return services, nil
}

// Endpoints returns the submission URLs of every discovered service.
func (s *Scanner) Endpoints(ctx context.Context) ([]string, error) {
	services, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(services))
	for _, svc := range services {
		out = append(out, svc.EndpointURL())
	}
	return out, nil
}

// parseServiceEntry converts a zeroconf service entry to a Service.
// Returns nil if the entry has no address or no form id.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Service {
	if entry == nil {
		return nil
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	formID := metadata[txtForm]
	if formID == "" {
		matches := instancePattern.FindStringSubmatch(entry.Instance)
		if len(matches) < 2 {
			return nil
		}
		formID = matches[1]
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Service{
		Instance:     entry.Instance,
		FormID:       formID,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Announcement describes a local intake to publish.
type Announcement struct {
	Instance string
	Port     int
	FormID   string
}

// Text returns the TXT records published for the announcement.
func (a Announcement) Text() []string {
	return []string{
		txtVersion + "=1",
		txtForm + "=" + a.FormID,
		txtPath + "=" + urls.LocalIntakePath,
	}
}

// Advertiser keeps an mDNS registration alive until Shutdown.
type Advertiser struct {
	server *zeroconf.Server
	once   sync.Once
}

// Advertise publishes the intake on all multicast interfaces.
func Advertise(a Announcement) (*Advertiser, error) {
	if a.FormID == "" {
		return nil, fmt.Errorf("form id is required")
	}
	if a.Port <= 0 {
		return nil, fmt.Errorf("invalid port %d", a.Port)
	}
	if a.Instance == "" {
		a.Instance = "contactform-" + a.FormID
	}

	server, err := zeroconf.Register(a.Instance, ServiceType, ServiceDomain, a.Port, a.Text(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Advertising intake service",
		zap.String("instance", a.Instance),
		zap.Int("port", a.Port),
	)
	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the registration. Safe to call more than once.
func (a *Advertiser) Shutdown() {
	a.once.Do(func() {
		a.server.Shutdown()
	})
}

// QuickScan performs a scan with the default timeout
func QuickScan() ([]*Service, error) {
	return NewScanner().Scan(context.Background())
}
