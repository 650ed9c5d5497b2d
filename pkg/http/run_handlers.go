package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"

	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
)

var runRequestSchema = z.Struct(z.Shape{
	"ValidFrom":  z.Time().Required(),
	"ValidUntil": z.Time().Required(),
})

func (rs *RestfulServer) PostRun(c *gin.Context) {
	var req models.RunIn
	if err := bindBody(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := errs.FromIssues(runRequestSchema.Validate(&req)); err != nil {
		fail(c, err)
		return
	}

	run, err := rs.Ops.Optimization.CreateRun(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, run)
}

func (rs *RestfulServer) GetRuns(c *gin.Context) {
	var query models.RunQuery
	var err error

	if query.From, err = timeQuery(c, "valid_from"); err != nil {
		fail(c, err)
		return
	}
	if query.Until, err = timeQuery(c, "valid_until"); err != nil {
		fail(c, err)
		return
	}
	if query.RunID, err = objectIDQuery(c, "run_id"); err != nil {
		fail(c, err)
		return
	}
	if query.IncludeSchedules, err = boolQuery(c, "schedules"); err != nil {
		fail(c, err)
		return
	}
	query.Status = models.RunStatus(c.Query("status"))

	runs, err := rs.Ops.Optimization.GetRunsByWindow(c.Request.Context(), query)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (rs *RestfulServer) GetRun(c *gin.Context) {
	runID, err := objectIDParam(c, "run_id")
	if err != nil {
		fail(c, err)
		return
	}
	include, err := boolQuery(c, "schedules")
	if err != nil {
		fail(c, err)
		return
	}

	run, err := rs.Ops.Optimization.GetRun(c.Request.Context(), runID, include)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (rs *RestfulServer) PostSchedules(c *gin.Context) {
	runID, err := objectIDParam(c, "run_id")
	if err != nil {
		fail(c, err)
		return
	}
	var batch []models.ScheduleIn
	if err := bindBody(c, &batch); err != nil {
		fail(c, err)
		return
	}

	schedules, err := rs.Ops.Optimization.AttachSchedules(c.Request.Context(), runID, batch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, schedules)
}

type StatusRequest struct {
	Status string `json:"status" zog:"status"`
}

var statusRequestSchema = z.Struct(z.Shape{
	"Status": z.String().Required().OneOf([]string{
		string(models.RunStatusCompleted), string(models.RunStatusFailed), string(models.RunStatusCancelled),
	}),
})

func (rs *RestfulServer) PatchRunStatus(c *gin.Context) {
	runID, err := objectIDParam(c, "run_id")
	if err != nil {
		fail(c, err)
		return
	}
	var req StatusRequest
	if err := bindBody(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := errs.FromIssues(statusRequestSchema.Validate(&req)); err != nil {
		fail(c, err)
		return
	}

	run, err := rs.Ops.Optimization.UpdateRunStatus(c.Request.Context(), runID, models.RunStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
