package grpc

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/James9b/fake-api-ecommerce/internal/cache"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	googlegrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
)

type stubSource struct {
	mu   sync.Mutex
	snap cache.Snapshot
}

func (s *stubSource) ProductsStatus() cache.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *stubSource) set(snap cache.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

func dialHealth(t *testing.T, source StatusSource) healthpb.HealthClient {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	lis := bufconn.Listen(1 << 20)
	server := googlegrpc.NewServer()
	healthpb.RegisterHealthServer(server, NewHealthHandler(source, logger))
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := googlegrpc.NewClient("passthrough:///bufnet",
		googlegrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		googlegrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{snap: cache.Snapshot{Key: cache.ProductsKey(), Status: cache.StatusIdle}}
	client := dialHealth(t, source)

	res, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, res.GetStatus())

	source.set(cache.Snapshot{Key: cache.ProductsKey(), Status: cache.StatusError, Err: errors.New("request failed")})
	res, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: CatalogService})
	require.NoError(t, err)
	want := &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}
	require.True(t, proto.Equal(want, res), "got %v", res)

	source.set(cache.Snapshot{Key: cache.ProductsKey(), Status: cache.StatusSuccess})
	res, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: CatalogService})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, res.GetStatus())

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "orders"})
	require.Equal(t, codes.NotFound, status.Code(err))
}
