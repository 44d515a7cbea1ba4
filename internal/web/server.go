// Package web serves the chat page and streams session snapshots to it over
// a websocket. Every connection owns its own transcript; nothing outlives it.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/diogo/zaril/internal/models"
	"github.com/diogo/zaril/internal/session"
)

//go:embed static
var staticFiles embed.FS

const shutdownTimeout = 5 * time.Second

// Server is the web presentation of the chat
type Server struct {
	completer session.Completer
	greeting  string
	logger    *log.Logger
	policy    *bluemonday.Policy
	mux       *http.ServeMux
}

// Option configures a Server
type Option func(*Server)

// WithGreeting sets the first assistant message of every session
func WithGreeting(greeting string) Option {
	return func(s *Server) {
		s.greeting = greeting
	}
}

// WithLogger sets the server logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server whose sessions complete through completer
func NewServer(completer session.Completer, opts ...Option) *Server {
	s := &Server{
		completer: completer,
		greeting:  models.DefaultGreeting,
		logger:    log.Default(),
		policy:    MessagePolicy(),
		mux:       http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	page, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("web: embedded assets: %v", err))
	}

	s.mux.Handle("GET /", http.FileServerFS(page))
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("web: listening on http://%s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
