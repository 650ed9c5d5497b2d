package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/metrics"
	"liyu1981.xyz/energy-opdb-service/pkg/ops"
)

type RestfulServer struct {
	Server           *gin.Engine
	Ops              *ops.OPS
	RateLimiterStore *common.RateLimiterStore
}

func (rs *RestfulServer) CheckClientLimiter(clientKey string) bool {
	return rs.RateLimiterStore.Allow(clientKey)
}

func (rs *RestfulServer) SetLimiter(clientKey string, clientRate float64, clientBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(clientKey, rate.Limit(clientRate), clientBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.Use(rs.RequestID())

	rs.Server.GET("/healthz", rs.HealthCheck)
	rs.Server.GET("/metrics", gin.WrapH(metrics.Handler()))
	rs.Server.POST("/limiter/:client", rs.PostLimiter)

	api := rs.Server.Group("/", rs.RateLimit())

	catalogs := api.Group("/catalogs")
	{
		catalogs.POST("/meters", rs.PostMeters)
		catalogs.GET("/meters", rs.GetMeters)
		catalogs.GET("/meters/:meter_id", rs.GetMeter)
		catalogs.GET("/meters/:meter_id/pods", rs.GetMeterPods)
		catalogs.POST("/pods", rs.PostPods)
		catalogs.GET("/pods", rs.GetPods)
		catalogs.POST("/assets", rs.PostAssets)
		catalogs.GET("/assets", rs.GetAssets)
		catalogs.POST("/ec/:ec_id/members", rs.PostECMembers)
		catalogs.GET("/ec/:ec_id/members", rs.GetECMembers)
	}

	api.POST("/measurements/:kind", rs.PostMeasurements)
	api.GET("/measurements/:kind", rs.GetMeasurements)

	api.POST("/forecasts/:kind/:ref", rs.PostForecasts)
	api.GET("/forecasts/:kind/:ref", rs.GetForecasts)

	optimization := api.Group("/optimization")
	{
		optimization.POST("", rs.PostRun)
		optimization.GET("", rs.GetRuns)
		optimization.GET("/:run_id", rs.GetRun)
		optimization.POST("/:run_id/schedules", rs.PostSchedules)
		optimization.PATCH("/:run_id/status", rs.PatchRunStatus)
	}
}
