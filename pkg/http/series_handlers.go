package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
)

func (rs *RestfulServer) PostMeasurements(c *gin.Context) {
	var batch []models.MeasurementIn
	if err := bindBody(c, &batch); err != nil {
		fail(c, err)
		return
	}

	inserted, err := rs.Ops.Measurement.InjectMeasurements(c.Request.Context(), c.Param("kind"), batch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inserted": inserted})
}

func (rs *RestfulServer) GetMeasurements(c *gin.Context) {
	var query models.MeasurementQuery
	var err error

	if c.Query("ref") == "" {
		fail(c, errs.Validation("ref is required"))
		return
	}
	if query.Ref, err = referenceValue("ref", c.Query("ref")); err != nil {
		fail(c, err)
		return
	}
	if query.From, err = timeQuery(c, "start_date"); err != nil {
		fail(c, err)
		return
	}
	if query.Until, err = timeQuery(c, "end_date"); err != nil {
		fail(c, err)
		return
	}

	series, err := rs.Ops.Measurement.GetMeasurements(c.Request.Context(), c.Param("kind"), query)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (rs *RestfulServer) PostForecasts(c *gin.Context) {
	ref, err := referenceValue("ref", c.Param("ref"))
	if err != nil {
		fail(c, err)
		return
	}
	var batch []models.ForecastIn
	if err := bindBody(c, &batch); err != nil {
		fail(c, err)
		return
	}

	forecasts, err := rs.Ops.Forecast.InjectForecasts(c.Request.Context(), c.Param("kind"), ref, batch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, forecasts)
}

func (rs *RestfulServer) GetForecasts(c *gin.Context) {
	ref, err := referenceValue("ref", c.Param("ref"))
	if err != nil {
		fail(c, err)
		return
	}
	var query models.ForecastQuery
	if query.ValidFrom, err = timeQuery(c, "valid_from"); err != nil {
		fail(c, err)
		return
	}
	if query.ForecastID, err = objectIDQuery(c, "forecast_id"); err != nil {
		fail(c, err)
		return
	}

	forecasts, err := rs.Ops.Forecast.GetForecasts(c.Request.Context(), c.Param("kind"), ref, query)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, forecasts)
}
