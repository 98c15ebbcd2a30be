package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrServerStarted is returned by Start on a server that is running.
	ErrServerStarted = errors.New("server already started")
	// ErrServerStopped is returned by Start after Stop.
	ErrServerStopped = errors.New("server stopped")
)

// Server is an http.Server that starts in the background and stops as a
// registry component.
type Server struct {
	http   *http.Server
	logger *zap.Logger
	done   chan error

	mu       sync.Mutex
	listener net.Listener
	stopped  bool
}

// NewServer returns a server for h on addr. Nothing listens until Start.
func NewServer(addr string, h http.Handler, logger *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
		done:   make(chan error, 1),
	}
}

// Start binds the listen address and serves in a new goroutine. Bind errors
// are returned; serve errors arrive on Done.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrServerStopped
	}
	if s.listener != nil {
		return ErrServerStarted
	}

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.http.Addr, err)
	}
	s.listener = ln

	go func() {
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		} else {
			s.logger.Error("Server stopped unexpectedly", zap.Error(err))
		}
		s.done <- err
		close(s.done)
	}()
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.http.Addr
	}
	return s.listener.Addr().String()
}

// Listening reports whether the server is started and not yet stopped.
func (s *Server) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil && !s.stopped
}

// Done receives the serve error (nil after a graceful Stop) and is then
// closed. It never fires for a server that was not started.
func (s *Server) Done() <-chan error { return s.done }

// Stop implements container.Stopper: it shuts the server down gracefully,
// waiting for in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.listener != nil && !s.stopped
	s.stopped = true
	s.mu.Unlock()

	if !started {
		return nil
	}
	return s.http.Shutdown(ctx)
}
