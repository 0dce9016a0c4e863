// Package network provides a pre-configured, shared HTTP client for platform and media host communication.
package network

import (
	"net/http"
	"time"

	"github.com/samber/lo"
	"golang.org/x/net/http2"
)

// Client is the singleton HTTP client shared across the application for efficient connection reuse.
// Status polling, playlist fetches and viewer tracking all run against the same two hosts,
// so the pool is tuned for high per-host reuse rather than host fan-out.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

// newTransport initializes a tuned http.Transport with HTTP/2 enabled.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = time.Second

	// Cloned transports lose protocol negotiation state, so re-enable h2 explicitly.
	lo.Must0(http2.ConfigureTransport(t))
	return t
}
