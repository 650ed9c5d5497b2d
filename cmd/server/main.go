package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/db"
	opdbGrpc "liyu1981.xyz/energy-opdb-service/pkg/grpc"
	opdbHttp "liyu1981.xyz/energy-opdb-service/pkg/http"
	"liyu1981.xyz/energy-opdb-service/pkg/ops"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := common.GetLogger()
	defer common.SyncLogger()

	opts := db.OptionsFromEnv()
	dbInstance, err := db.GetInstance(ctx, opts)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", opts.Redacted(), err)
	}
	if err := db.EnsureIndexes(ctx, dbInstance); err != nil {
		log.Fatalf("failed to create indexes: %v", err)
	}

	grpcHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyOPDBGrpcHostPort))
	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyOPDBHttpHostPort))

	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyOPDBDefaultRate), 64); err != nil {
		log.Fatal("Invalid OPDB_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyOPDBDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid OPDB_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	defaultLimiter := zap.String("default_limiter",
		fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", defaultRate, defaultBurst))

	opsCore := ops.New(dbInstance)

	limiterIdle := time.Duration(common.EnvInt(common.EnvKeyOPDBLimiterIdle, common.DefaultLimiterIdleMinute)) * time.Minute
	newLimiterStore := func() *common.RateLimiterStore {
		store := common.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst))
		go store.SweepEvery(ctx, time.Minute, limiterIdle)
		return store
	}

	var grpcServer *grpc.Server
	if grpcHostPort != "" {
		healthServer := opdbGrpc.NewHealthServer(dbInstance, newLimiterStore())
		grpcServer = healthServer.NewServer()
		logger.Info("gRPC server created with:", defaultLimiter)

		period := time.Duration(common.EnvInt(common.EnvKeyOPDBHealthProbePeriod, common.DefaultHealthProbePeriodSecond)) * time.Second
		go healthServer.Watch(ctx, period)

		listener, err := net.Listen("tcp", grpcHostPort)
		if err != nil {
			log.Fatalf("failed to listen: %v", err)
		}

		go func() {
			logger.Info("start gRPC server on " + grpcHostPort)
			if err := grpcServer.Serve(listener); err != nil {
				log.Fatalf("grpc server failed to serve: %v", err)
			}
		}()
	}

	if httpHostPort == "" {
		httpHostPort = common.DefaultHttpHostPort
	}

	rs := &opdbHttp.RestfulServer{
		Server:           gin.Default(),
		Ops:              opsCore,
		RateLimiterStore: newLimiterStore(),
	}
	rs.Setup()

	logger.Info("http server created with:", defaultLimiter)

	httpServer := &http.Server{Addr: httpHostPort, Handler: rs.Server}
	go func() {
		logger.Info("Starting HTTP server on: " + httpHostPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed to serve: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := dbInstance.Close(shutdownCtx); err != nil {
		logger.Error("Closing the database failed", zap.Error(err))
	}
}
