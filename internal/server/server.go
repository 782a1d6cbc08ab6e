package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"
)

// Server accepts client connections and serves each one on its own goroutine.
type Server struct {
	addr   string
	router *Router
	logger *slog.Logger

	mu    sync.Mutex
	conns map[string]net.Conn
	wg    sync.WaitGroup
}

// New creates a Server listening on addr once Run is called.
func New(addr string, router *Router, logger *slog.Logger) *Server {
	return &Server{
		addr:   addr,
		router: router,
		logger: logger,
		conns:  make(map[string]net.Conn),
	}
}

// Run listens and serves until the context is cancelled, then closes the
// listener and all live connections and waits for their goroutines.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.logger.Info("server listening", "addr", s.addr)

	go func() {
		<-ctx.Done()
		ln.Close()
		s.mu.Lock()
		for _, c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
	}()

	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.logger.Error("accept", "error", err)
			continue
		}

		id := uuid.NewString()
		connLogger := s.logger.With("conn_id", id, "remote", c.RemoteAddr().String())
		connLogger.Debug("connection opened")

		s.track(id, c)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(id)
			serveConn(ctx, c, s.router, connLogger)
			connLogger.Debug("connection closed")
		}()
	}

	s.wg.Wait()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) track(id string, c net.Conn) {
	s.mu.Lock()
	s.conns[id] = c
	s.mu.Unlock()
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}
