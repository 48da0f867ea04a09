// Package health exposes the standard gRPC health service for the
// storefront and its backing stores.
package health

import (
	"context"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	DefaultInterval = 15 * time.Second
	pingTimeout    = 3 * time.Second
)

// Check pings one dependency. Name doubles as the gRPC service name the
// result is reported under.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	checks []Check
	logger *zap.Logger

	mu     sync.Mutex
	failed map[string]bool
}

func NewServer(logger *zap.Logger, checks ...Check) *Server {
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(grpcServer)

	s := &Server{
		grpc:   grpcServer,
		health: hs,
		checks: checks,
		logger: logger,
		failed: make(map[string]bool),
	}
	for _, c := range checks {
		hs.SetServingStatus(c.Name, healthpb.HealthCheckResponse_SERVING)
	}
	return s
}

// Serve blocks until the listener fails or the server stops.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Run pings every dependency now and then once per interval until ctx is
// done. The overall status is NOT_SERVING while any ping fails.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s.CheckNow(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckNow(ctx)
		}
	}
}

func (s *Server) CheckNow(ctx context.Context) {
	healthy := true
	for _, c := range s.checks {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := c.Ping(pingCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			healthy = false
		}
		s.health.SetServingStatus(c.Name, status)
		s.logTransition(c.Name, err)
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", overall)
}

// logTransition logs only when a dependency changes state.
func (s *Server) logTransition(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasFailed := s.failed[name]
	switch {
	case err != nil && !wasFailed:
		s.failed[name] = true
		s.logger.Warn("dependency unhealthy", zap.String("dependency", name), zap.Error(err))
	case err == nil && wasFailed:
		delete(s.failed, name)
		s.logger.Info("dependency recovered", zap.String("dependency", name))
	}
}

// Stop marks everything NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
