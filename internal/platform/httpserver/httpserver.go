// Package httpserver builds the gate's HTTP server.
package httpserver

import (
	"net/http"
	"time"
)

// Timeouts chosen for an edge gate: requests are small and header reads
// are capped tightly, but the write timeout leaves room for the upstream
// proxy path.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

// New returns a server wired with the gate's timeout profile.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
