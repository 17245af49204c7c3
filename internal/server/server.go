// Package server ties the hub to its listeners.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// Server owns the TCP listener, the optional HTTP listener for the
// WebSocket gateway, and the hub both feed.
type Server struct {
	cfg    Config
	logger *slog.Logger
	hub    *Hub

	listener     net.Listener
	httpListener net.Listener
	httpServer   *http.Server

	wg sync.WaitGroup
}

// NewServer creates a server from cfg. Nothing is bound until Listen.
func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = sanitizeConfig(cfg)
	return &Server{
		cfg:    cfg,
		logger: logger,
		hub:    NewHub(cfg, logger),
	}
}

// Hub returns the hub the server feeds.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Addr returns the bound TCP address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// HTTPAddr returns the bound HTTP address, or nil when the gateway is off.
func (s *Server) HTTPAddr() net.Addr {
	if s.httpListener == nil {
		return nil
	}
	return s.httpListener.Addr()
}

// Listen binds the TCP port and, when configured, the HTTP port. Any
// failure is a *SetupError.
func (s *Server) Listen(ctx context.Context) error {
	ln, err := listenTCP(ctx, s.cfg.Addr, s.cfg.ReusePort)
	if err != nil {
		return err
	}
	s.listener = ln

	if s.cfg.HTTPAddr != "" {
		var lc net.ListenConfig
		hln, err := lc.Listen(ctx, "tcp", s.cfg.HTTPAddr)
		if err != nil {
			_ = ln.Close()
			return &SetupError{Op: "listen", Addr: s.cfg.HTTPAddr, Err: err}
		}
		s.httpListener = hln
		s.httpServer = CreateServer(s.cfg.HTTPAddr, SetupRoutes(s.hub, s.cfg, s.logger))
	}
	return nil
}

// Serve runs the hub and the accept loops until ctx is done, then shuts
// everything down.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server: Serve called before Listen")
	}

	go s.hub.Run()
	s.logger.Info("Hub started and ready to relay", "max_clients", s.cfg.MaxClients)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop(s.listener)
	}()
	s.logger.Info("Server listening", "addr", s.listener.Addr().String())

	if s.httpServer != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("HTTP server stopped", "error", err)
			}
		}()
		s.logger.Info("WebSocket gateway listening", "addr", s.httpListener.Addr().String())
	}

	<-ctx.Done()
	return s.Shutdown(5 * time.Second)
}

// ListenAndServe binds and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Shutdown closes the listeners, stops the hub and waits for the accept
// loops to exit.
func (s *Server) Shutdown(timeout time.Duration) error {
	var errs []error

	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if s.httpServer != nil {
		if err := ShutdownServer(s.httpServer, timeout, s.logger); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.hub.Shutdown(timeout); err != nil {
		errs = append(errs, err)
	}

	s.wg.Wait()
	return errors.Join(errs...)
}
