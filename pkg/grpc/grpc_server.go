package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
)

// ServiceName is the health service name clients can ask for besides the
// server-wide "".
const ServiceName = "opdb.OperationalData"

// Pinger is what the health probe needs from the storage engine.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthServer struct {
	Db               Pinger
	RateLimiterStore *common.RateLimiterStore
	Health           *health.Server
	ProbeTimeout     time.Duration
}

func NewHealthServer(d Pinger, limiter *common.RateLimiterStore) *HealthServer {
	return &HealthServer{
		Db:               d,
		RateLimiterStore: limiter,
		Health:           health.NewServer(),
		ProbeTimeout:     2 * time.Second,
	}
}

func grpcLogger() *zap.Logger {
	return common.GetLoggerWith(common.LoggerNameGrpcServer)
}

func (s *HealthServer) CheckClientLimiter(clientKey string) bool {
	return s.RateLimiterStore.Allow(clientKey)
}

// NewServer builds a grpc.Server with the interceptors and the health
// service registered.
func (s *HealthServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.CreateLoggingInterceptor(), s.CreateRateLimitInterceptor()))
	server := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(server, s.Health)
	return server
}

// Probe pings the storage engine once and publishes the outcome.
func (s *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, s.ProbeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.Db.Ping(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		grpcLogger().Warn("Storage engine ping failed", zap.Error(err))
	}
	s.Health.SetServingStatus("", status)
	s.Health.SetServingStatus(ServiceName, status)
	return status
}

// Watch probes every period until ctx is done, then marks the server as
// shutting down so clients stop routing to it.
func (s *HealthServer) Watch(ctx context.Context, period time.Duration) {
	s.Probe(ctx)

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Health.Shutdown()
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}
