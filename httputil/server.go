// Copyright (c) 2023 BVK Chaitanya

// Package httputil implements the status server used by the background
// monitor. Handlers can be added and removed while the server is running.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"sync/atomic"

	"github.com/bvk/shopwatch/ctxutil"
	"github.com/google/uuid"
)

type Server struct {
	cg ctxutil.CloseGroup

	opts Options

	mux atomic.Pointer[http.ServeMux]

	mu         sync.Mutex
	handlerMap map[string]http.Handler
	serverMap  map[string]*http.Server
}

// New creates a http server without any listeners.
func New(opts *Options) (*Server, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	s := &Server{
		opts:       *opts,
		handlerMap: make(map[string]http.Handler),
		serverMap:  make(map[string]*http.Server),
	}
	s.mux.Store(http.NewServeMux())
	return s, nil
}

// Close shuts down all listeners and waits for the serving goroutines.
func (s *Server) Close() error {
	s.mu.Lock()
	servers := s.serverMap
	s.serverMap = make(map[string]*http.Server)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	var errs []error
	for addr, server := range servers {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("could not shutdown server at %s: %w", addr, err))
			server.Close()
		}
	}
	s.cg.Close()
	return errors.Join(errs...)
}

// StartTCP starts serving on the address and waits till the listener serves
// a probe request. Returns the actual listening address, which is useful
// when the input uses port zero.
func (s *Server) StartTCP(ctx context.Context, addr string) (string, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("could not listen at %q: %w", addr, err)
	}
	laddr := l.Addr().String()

	probePath := "/" + uuid.New().String()
	s.AddHandler(probePath, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		log.Printf("%s: received readiness probe from %q", laddr, r.RemoteAddr)
	}))
	defer s.RemoveHandler(probePath)

	server := &http.Server{
		Handler: s,
		BaseContext: func(net.Listener) context.Context {
			return s.cg.Context()
		},
	}

	s.mu.Lock()
	s.serverMap[laddr] = server
	s.mu.Unlock()

	s.cg.Go(func(ctx context.Context) {
		if err := server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "addr", laddr, "err", err)
		}
	})

	if err := s.waitReady(ctx, laddr, probePath); err != nil {
		s.Stop(laddr)
		return "", err
	}
	return laddr, nil
}

func (s *Server) waitReady(ctx context.Context, laddr, probePath string) error {
	client := &http.Client{Timeout: s.opts.ReadinessTimeout}
	u := url.URL{Scheme: "http", Host: laddr, Path: probePath}

	ctx, cancel := context.WithTimeout(ctx, s.opts.ReadinessTimeout)
	defer cancel()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return fmt.Errorf("could not create probe request: %w", err)
		}
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		if err := ctxutil.Sleep(ctx, s.opts.ReadinessRetryInterval); err != nil {
			return fmt.Errorf("http server at %s is not ready: %w", laddr, err)
		}
	}
}

// Stop closes the listener at the address returned by StartTCP.
func (s *Server) Stop(laddr string) error {
	s.mu.Lock()
	server, ok := s.serverMap[laddr]
	delete(s.serverMap, laddr)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("http server at %s not found: %w", laddr, os.ErrNotExist)
	}
	return server.Close()
}

func (s *Server) AddHandler(pattern string, handler http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlerMap[pattern] = handler
	s.updateMux()
}

// RemoveHandler returns false if the pattern was not registered.
func (s *Server) RemoveHandler(pattern string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.handlerMap[pattern]; !ok {
		return false
	}
	delete(s.handlerMap, pattern)
	s.updateMux()
	return true
}

func (s *Server) updateMux() {
	m := http.NewServeMux()
	for k, v := range s.handlerMap {
		m.Handle(k, v)
	}
	s.mux.Store(m)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.Load().ServeHTTP(w, r)
}
