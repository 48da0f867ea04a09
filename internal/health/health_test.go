package health

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T, s *Server) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func status(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestServer_AllHealthy(t *testing.T) {
	s := NewServer(zap.NewNop(),
		Check{Name: "redis", Ping: func(context.Context) error { return nil }},
		Check{Name: "mongo", Ping: func(context.Context) error { return nil }},
	)
	client := startServer(t, s)

	s.CheckNow(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, "redis"))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, "mongo"))
}

func TestServer_FailingDependency(t *testing.T) {
	var down atomic.Bool
	down.Store(true)

	s := NewServer(zap.NewNop(),
		Check{Name: "redis", Ping: func(context.Context) error { return nil }},
		Check{Name: "postgres", Ping: func(context.Context) error {
			if down.Load() {
				return errors.New("connection refused")
			}
			return nil
		}},
	)
	client := startServer(t, s)

	s.CheckNow(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, "redis"))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client, "postgres"))

	down.Store(false)
	s.CheckNow(context.Background())

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, "postgres"))
}

func TestServer_RunStopsWithContext(t *testing.T) {
	var pings atomic.Int32
	s := NewServer(zap.NewNop(), Check{Name: "redis", Ping: func(context.Context) error {
		pings.Add(1)
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return pings.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
