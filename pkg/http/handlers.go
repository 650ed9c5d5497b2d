package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"

	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
)

func (rs *RestfulServer) PostMeters(c *gin.Context) {
	var batch []models.MeterIn
	if err := bindBody(c, &batch); err != nil {
		fail(c, err)
		return
	}

	result, err := rs.Ops.Catalog.AddMeters(c.Request.Context(), batch)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (rs *RestfulServer) GetMeters(c *gin.Context) {
	meters, err := rs.Ops.Catalog.ListMeters(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meters)
}

func (rs *RestfulServer) GetMeter(c *gin.Context) {
	meterID, err := intParam(c, "meter_id")
	if err != nil {
		fail(c, err)
		return
	}

	view, err := rs.Ops.Catalog.GetMeterWithPods(c.Request.Context(), meterID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (rs *RestfulServer) GetMeterPods(c *gin.Context) {
	meterID, err := intParam(c, "meter_id")
	if err != nil {
		fail(c, err)
		return
	}

	view, err := rs.Ops.Catalog.GetMeterWithPods(c.Request.Context(), meterID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view.Pods)
}

func (rs *RestfulServer) PostPods(c *gin.Context) {
	var batch []models.PodWithMeterIn
	if err := bindBody(c, &batch); err != nil {
		fail(c, err)
		return
	}

	pods, err := rs.Ops.Catalog.AddPods(c.Request.Context(), batch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, pods)
}

func (rs *RestfulServer) GetPods(c *gin.Context) {
	pods, err := rs.Ops.Catalog.ListPods(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pods)
}

func (rs *RestfulServer) PostAssets(c *gin.Context) {
	var batch []models.AssetIn
	if err := bindBody(c, &batch); err != nil {
		fail(c, err)
		return
	}

	assets, err := rs.Ops.Catalog.AddAssets(c.Request.Context(), batch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, assets)
}

func (rs *RestfulServer) GetAssets(c *gin.Context) {
	assets, err := rs.Ops.Catalog.ListAssets(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (rs *RestfulServer) PostECMembers(c *gin.Context) {
	ecID, err := intParam(c, "ec_id")
	if err != nil {
		fail(c, err)
		return
	}
	var batch []models.ECMemberIn
	if err := bindBody(c, &batch); err != nil {
		fail(c, err)
		return
	}

	members, err := rs.Ops.Catalog.AddECMembers(c.Request.Context(), ecID, batch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, members)
}

func (rs *RestfulServer) GetECMembers(c *gin.Context) {
	ecID, err := intParam(c, "ec_id")
	if err != nil {
		fail(c, err)
		return
	}

	members, err := rs.Ops.Catalog.ListECMembers(c.Request.Context(), ecID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

type LimiterRequest struct {
	Rate  float64 `json:"rate" zog:"rate"`
	Burst int     `json:"burst" zog:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"Rate":  z.Float64().GT(0),
	"Burst": z.Int().GT(0),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	client := c.Param("client")

	var req LimiterRequest
	if err := bindBody(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := errs.FromIssues(limiterRequestSchema.Validate(&req)); err != nil {
		fail(c, err)
		return
	}

	rs.SetLimiter(client, req.Rate, req.Burst)

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	if rs.Ops != nil && rs.Ops.Db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := rs.Ops.Db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
