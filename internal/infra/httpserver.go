package infra

import (
	"context"
	"net"
	"net/http"
	"time"
)

// HTTPServer owns the listener lifecycle so main.go can start it in a
// goroutine and drain it on shutdown without touching net/http directly.
type HTTPServer struct {
	srv *http.Server
}

// NewHTTPServer builds the server with the timeouts from cfg. The write
// timeout bounds the slowest endpoints (bulk email, xlsx export), which
// run their whole pipeline inside the request.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{srv: &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.srv.Addr
}

// Start blocks serving requests until Shutdown is called or the
// listener fails. It returns http.ErrServerClosed after a clean drain.
func (s *HTTPServer) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight
// requests, bounded by ctx.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
