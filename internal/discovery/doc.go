// Package discovery finds and announces local contact form intakes over mDNS.
//
// A local intake server advertises itself as a "_contactform._tcp" service
// with TXT records naming its form id and path. Clients browse for that
// service type and turn each answer into a submission endpoint URL.
//
// # Usage Example
//
//	services, err := discovery.QuickScan()
//	if err != nil {
//	    return err
//	}
//	for _, svc := range services {
//	    fmt.Println(svc.EndpointURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Client and intake must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
