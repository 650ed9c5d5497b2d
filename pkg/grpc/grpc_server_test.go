package grpc

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	_ "liyu1981.xyz/energy-opdb-service/pkg/testing"
)

const bufSize = 1024 * 1024

type fakePinger struct {
	down atomic.Bool
}

func (p *fakePinger) Ping(ctx context.Context) error {
	if p.down.Load() {
		return errors.New("server selection timeout")
	}
	return nil
}

func startTestServer(t *testing.T, limiter *common.RateLimiterStore) (*HealthServer, *fakePinger, healthpb.HealthClient) {
	listener := bufconn.Listen(bufSize)

	pinger := &fakePinger{}
	hs := NewHealthServer(pinger, limiter)
	server := hs.NewServer()

	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return hs, pinger, healthpb.NewHealthClient(conn)
}

func TestHealthReflectsStorage(t *testing.T) {
	common.SetTestLoggerNop()
	hs, pinger, client := startTestServer(t, nil)
	ctx := context.Background()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hs.Probe(ctx))
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	pinger.down.Store(true)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, hs.Probe(ctx))
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown.Service"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestWatchStopsOnCancel(t *testing.T) {
	common.SetTestLoggerNop()
	hs, _, client := startTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hs.Watch(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()
	<-done

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestRateLimitInterceptor(t *testing.T) {
	common.SetTestLoggerNop()
	hs, _, client := startTestServer(t, common.NewRateLimiterStore(0.001, 2))
	ctx := context.Background()
	hs.Probe(ctx)

	for i := range 2 {
		_, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
		require.NoError(t, err, "expected request %d to pass", i+1)
	}

	_, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.Error(t, err, "expected third request to be rate limited")
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestLoggingInterceptorCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zapcore.DebugLevel)
	hs, _, client := startTestServer(t, nil)
	hs.Probe(context.Background())

	ctx := metadata.AppendToOutgoingContext(context.Background(), metadataRequestID, "req-7")
	_, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)

	found := false
	for _, entry := range common.ParseLogs(&buf) {
		if entry["msg"] == "Handled call" {
			found = true
			assert.Equal(t, "req-7", entry[common.LoggerFieldRequestID])
			assert.Equal(t, "/grpc.health.v1.Health/Check", entry["method"])
			assert.Equal(t, "OK", entry["code"])
		}
	}
	assert.True(t, found)
}
