// Package server hosts mounted accordions behind a chi router: the page,
// its client script and stylesheet, and the JSON API the script drives.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/sheetfold/sheetfold/internal/accordion"
	"github.com/sheetfold/sheetfold/internal/richtext"
	"github.com/sheetfold/sheetfold/internal/search"
	"github.com/sheetfold/sheetfold/internal/store"
)

const healthSyncInterval = 2 * time.Second

type Options struct {
	Addr     string
	GRPCAddr string
	MDNS     bool
	Title    string
}

type Server struct {
	opts     Options
	registry *accordion.Registry
	search   *search.Engine
	fonts    *richtext.FontRegistry
	db       *store.Store
	health   *health.Server
	router   http.Handler
}

// New wires the host. db may be nil when viewed state is kept elsewhere.
func New(opts Options, reg *accordion.Registry, engine *search.Engine, fonts *richtext.FontRegistry, db *store.Store) *Server {
	if fonts == nil {
		fonts = richtext.DefaultFonts
	}
	s := &Server{
		opts:     opts,
		registry: reg,
		search:   engine,
		fonts:    fonts,
		db:       db,
		health:   health.NewServer(),
	}
	s.router = buildRouter(s)
	s.syncHealth()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP listens on the configured address until ctx is done.
func (s *Server) ServeHTTP(ctx context.Context) error {
	addr := s.opts.Addr
	if addr == "" {
		addr = ":8112"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("sheetfold server started", "addr", addr)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen and serve: %w", err)
			return
		}
		errCh <- nil
	}()

	if s.opts.MDNS {
		stop := startMDNSAdvertiser(addr)
		defer stop()
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		slog.Info("sheetfold server stopped")
		return nil
	case err := <-errCh:
		if err != nil {
			return err
		}
		slog.Info("sheetfold server stopped")
		return nil
	}
}

// ServeGRPC exposes the standard gRPC health service. The overall status is
// NOT_SERVING while any instance is showing an error.
func (s *Server) ServeGRPC(ctx context.Context) error {
	if s.opts.GRPCAddr == "" {
		return nil
	}
	lis, err := net.Listen("tcp", s.opts.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	g := grpc.NewServer()
	healthpb.RegisterHealthServer(g, s.health)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("grpc health service started", "addr", s.opts.GRPCAddr)
		errCh <- g.Serve(lis)
	}()

	ticker := time.NewTicker(healthSyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			g.GracefulStop()
			return nil
		case err := <-errCh:
			if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve grpc: %w", err)
			}
			return nil
		case <-ticker.C:
			s.syncHealth()
		}
	}
}

func (s *Server) syncHealth() {
	status := healthpb.HealthCheckResponse_SERVING
	if !s.registry.Healthy() {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
}
