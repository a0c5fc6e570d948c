// Package submission delivers a contact form payload to an ordered list of
// intake endpoints.
//
// Delivery is sequential. The payload is encoded once and the identical body
// and headers are POSTed to endpoint 0, then 1, and so on, stopping at the
// first 2xx response. Endpoints are never contacted concurrently because
// parallel delivery to third-party intake services creates duplicate leads.
//
//	client, err := submission.NewClient(urls.DefaultEndpoints)
//	res, err := client.Submit(ctx, payload)
//	if submission.IsExhausted(err) {
//	    // every endpoint failed, err wraps the last attempt's error
//	}
//
// # Error Types
//
// TransportError describes a single failed attempt and is classified the same
// way the device tools classify network failures (timeout, refused, DNS,
// unreachable, HTTP rejection). ExhaustedError is returned only after the last
// endpoint's attempt completes and carries every Attempt for diagnostics.
package submission
