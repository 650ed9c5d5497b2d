package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
	"liyu1981.xyz/energy-opdb-service/pkg/ops"
	"liyu1981.xyz/energy-opdb-service/pkg/ops/mocks"
	_ "liyu1981.xyz/energy-opdb-service/pkg/testing"
)

type mockServices struct {
	catalog      *mocks.MockICatalog
	measurement  *mocks.MockIMeasurement
	forecast     *mocks.MockIForecast
	optimization *mocks.MockIOptimization
}

func setupTestServer(t *testing.T, limiter *common.RateLimiterStore) (*RestfulServer, *mockServices) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	m := &mockServices{
		catalog:      mocks.NewMockICatalog(ctrl),
		measurement:  mocks.NewMockIMeasurement(ctrl),
		forecast:     mocks.NewMockIForecast(ctrl),
		optimization: mocks.NewMockIOptimization(ctrl),
	}
	core := &ops.OPS{}
	core.WithServices(ops.ServiceOpts{
		Catalog:      m.catalog,
		Measurement:  m.measurement,
		Forecast:     m.forecast,
		Optimization: m.optimization,
	})

	rs := &RestfulServer{
		Server:           gin.New(),
		Ops:              core,
		RateLimiterStore: limiter,
	}
	rs.Setup()

	return rs, m
}

func do(rs *RestfulServer, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	common.SetTestLoggerNop()
	rs, _ := setupTestServer(t, nil)

	w := do(rs, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(common.HeaderRequestID))

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(common.HeaderRequestID, "req-42")
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(common.HeaderRequestID))
}

func TestMetricsEndpoint(t *testing.T) {
	common.SetTestLoggerNop()
	rs, _ := setupTestServer(t, nil)

	w := do(rs, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestPostMeasurements(t *testing.T) {
	common.SetTestLoggerNop()
	rs, m := setupTestServer(t, nil)

	oid := bson.NewObjectID()
	m.measurement.EXPECT().
		InjectMeasurements(gomock.Any(), "storage", gomock.Any()).
		DoAndReturn(func(ctx context.Context, kind string, batch []models.MeasurementIn) (int, error) {
			require.Len(t, batch, 2)
			assert.Equal(t, models.ExternalRef(10), batch[0].Ref)
			assert.Equal(t, models.SurrogateRef(oid), batch[1].Ref)
			assert.Equal(t, 50.0, *batch[0].Values["soc"])
			assert.NotEmpty(t, common.RequestIDFromContext(ctx))
			return len(batch), nil
		})

	body := `[
		{"asset_id": 10, "timestamp": "2023-01-01T00:00:00Z", "imported_power": 1, "exported_power": 0, "soc": 50},
		{"asset_id": "` + oid.Hex() + `", "timestamp": "2023-01-01T00:01:00Z", "imported_power": 1, "exported_power": 0, "soc": 51}
	]`
	w := do(rs, "POST", "/measurements/storage", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"inserted":2}`, w.Body.String())
}

func TestPostMeasurementsErrors(t *testing.T) {
	common.SetTestLoggerNop()
	rs, m := setupTestServer(t, nil)

	m.measurement.EXPECT().
		InjectMeasurements(gomock.Any(), "storage", gomock.Len(1)).
		Return(0, errs.NotFoundReference("asset", []any{999}))

	w := do(rs, "POST", "/measurements/storage",
		`[{"asset_id": 999, "timestamp": "2023-01-01T00:00:00Z", "imported_power": 1, "exported_power": 0, "soc": 50}]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t,
		`{"error":{"kind":"NotFoundReference","message":"found non-existing asset references [999]","ids":[999]}}`,
		w.Body.String())

	// malformed rows never reach the service
	w = do(rs, "POST", "/measurements/storage", `[{"asset_id": 1, "pod_id": 2, "timestamp": "2023-01-01T00:00:00Z"}]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"ValidationError"`)

	w = do(rs, "POST", "/measurements/storage", `{"not":"a list"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMeasurements(t *testing.T) {
	common.SetTestLoggerNop()
	rs, m := setupTestServer(t, nil)

	storage, _ := models.LookupMeasurementKind("storage")
	ref := bson.NewObjectID()
	m.measurement.EXPECT().
		GetMeasurements(gomock.Any(), "storage", gomock.Any()).
		DoAndReturn(func(ctx context.Context, kind string, q models.MeasurementQuery) (*models.Series, error) {
			assert.Equal(t, models.ExternalRef(10), q.Ref)
			require.NotNil(t, q.From)
			assert.True(t, q.From.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
			assert.Nil(t, q.Until)
			return models.NewSeries(storage, ref), nil
		})

	w := do(rs, "GET", "/measurements/storage?ref=10&start_date=2023-01-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, ref.Hex(), got["asset_id"])
	assert.Equal(t, []any{}, got["timestamps"])
	assert.Nil(t, got["soc"])

	w = do(rs, "GET", "/measurements/storage", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(rs, "GET", "/measurements/storage?ref=10&end_date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "end_date")
}

func TestCatalogRoutes(t *testing.T) {
	common.SetTestLoggerNop()
	rs, m := setupTestServer(t, nil)

	meter := models.Meter{ID: bson.NewObjectID(), MeterID: 1, MeterType: models.MeterTypeMain}
	pod := models.POD{ID: bson.NewObjectID(), PodID: 100, PodType: models.PODTypeConsumer, MeterRef: meter.ID}

	m.catalog.EXPECT().
		AddMeters(gomock.Any(), []models.MeterIn{{MeterID: 1, MeterType: models.MeterTypeMain}}).
		Return(&models.MeterAddResult{Meters: []models.Meter{meter}, Pods: []models.POD{}}, nil)
	w := do(rs, "POST", "/catalogs/meters", `[{"meter_id": 1, "meter_type": "MAIN"}]`)
	assert.Equal(t, http.StatusCreated, w.Code)

	m.catalog.EXPECT().GetMeterWithPods(gomock.Any(), 1).
		Return(&models.MeterWithPods{Meter: meter, Pods: []models.POD{pod}}, nil).Times(2)
	w = do(rs, "GET", "/catalogs/meters/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pod_id":100`)

	w = do(rs, "GET", "/catalogs/meters/1/pods", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var pods []models.POD
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pods))
	assert.Equal(t, []models.POD{pod}, pods)

	m.catalog.EXPECT().GetMeterWithPods(gomock.Any(), 2).Return(nil, errs.NotFound("meter", 2))
	w = do(rs, "GET", "/catalogs/meters/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(rs, "GET", "/catalogs/meters/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	m.catalog.EXPECT().AddPods(gomock.Any(), gomock.Any()).Return(nil, errs.Conflict("pod_id already registered", 100))
	w = do(rs, "POST", "/catalogs/pods", `[{"pod_id": 100, "pod_type": "CONSUMER", "meter_id": 1}]`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"ids":[100]`)

	m.catalog.EXPECT().AddECMembers(gomock.Any(), 7, gomock.Len(1)).Return([]models.ECMember{}, nil)
	w = do(rs, "POST", "/catalogs/ec/7/members", `[{"pod_id": 100, "member_type": "CONSUMER", "parameters": {}}]`)
	assert.Equal(t, http.StatusCreated, w.Code)

	m.catalog.EXPECT().ListAssets(gomock.Any()).Return(nil, errs.Infrastructure(assert.AnError))
	w = do(rs, "GET", "/catalogs/assets", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal storage error")
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestForecastRoutes(t *testing.T) {
	common.SetTestLoggerNop()
	rs, m := setupTestServer(t, nil)

	forecastID := bson.NewObjectID()
	m.forecast.EXPECT().
		GetForecasts(gomock.Any(), "asset", models.ExternalRef(3), gomock.Any()).
		DoAndReturn(func(ctx context.Context, kind string, ref models.Reference, q models.ForecastQuery) ([]models.Forecast, error) {
			require.NotNil(t, q.ForecastID)
			assert.Equal(t, forecastID, *q.ForecastID)
			assert.Nil(t, q.ValidFrom)
			return []models.Forecast{}, nil
		})
	w := do(rs, "GET", "/forecasts/asset/3?forecast_id="+forecastID.Hex(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(rs, "GET", "/forecasts/asset/3?forecast_id=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(rs, "POST", "/forecasts/asset/x-1", `[]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizationRoutes(t *testing.T) {
	common.SetTestLoggerNop()
	rs, m := setupTestServer(t, nil)

	runID := bson.NewObjectID()
	run := &models.OptimizationRun{ID: runID, Status: models.RunStatusRunning}

	m.optimization.EXPECT().CreateRun(gomock.Any(), gomock.Any()).Return(run, nil)
	w := do(rs, "POST", "/optimization",
		`{"valid_from": "2023-01-01T00:00:00Z", "valid_until": "2023-01-02T00:00:00Z"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"RUNNING"`)

	w = do(rs, "POST", "/optimization", `{"valid_until": "2023-01-02T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t,
		`{"error":{"kind":"ValidationError","message":"valid_from: is required"}}`,
		w.Body.String())

	m.optimization.EXPECT().GetRun(gomock.Any(), runID, true).Return(run, nil)
	w = do(rs, "GET", "/optimization/"+runID.Hex()+"?schedules=true", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(rs, "GET", "/optimization/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	m.optimization.EXPECT().
		GetRunsByWindow(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, q models.RunQuery) ([]models.OptimizationRun, error) {
			assert.Equal(t, models.RunStatusRunning, q.Status)
			assert.False(t, q.IncludeSchedules)
			require.NotNil(t, q.Until)
			return []models.OptimizationRun{*run}, nil
		})
	w = do(rs, "GET", "/optimization?valid_until=2023-01-02&status=RUNNING", "")
	assert.Equal(t, http.StatusOK, w.Code)

	m.optimization.EXPECT().
		AttachSchedules(gomock.Any(), runID, gomock.Len(1)).
		Return(nil, errs.NotFoundReference("asset", []any{5}))
	w = do(rs, "POST", "/optimization/"+runID.Hex()+"/schedules",
		`[{"asset_id": 5, "timestamp": ["2023-01-01T00:00:00Z"], "results": []}]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	m.optimization.EXPECT().UpdateRunStatus(gomock.Any(), runID, models.RunStatusCompleted).
		Return(nil, errs.Conflict("run "+runID.Hex()+" is already COMPLETED", runID.Hex()))
	w = do(rs, "PATCH", "/optimization/"+runID.Hex()+"/status", `{"status": "COMPLETED"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(rs, "PATCH", "/optimization/"+runID.Hex()+"/status", `{"status": "PAUSED"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"status: `)
}

func TestRateLimit(t *testing.T) {
	common.SetTestLoggerNop()
	rs, m := setupTestServer(t, common.NewRateLimiterStore(0.001, 2))

	m.catalog.EXPECT().ListMeters(gomock.Any()).Return([]models.Meter{}, nil).Times(2)
	for range 2 {
		w := do(rs, "GET", "/catalogs/meters", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := do(rs, "GET", "/catalogs/meters", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// health checks are not limited
	w = do(rs, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostLimiter(t *testing.T) {
	common.SetTestLoggerNop()
	store := common.NewRateLimiterStore(1, 1)
	rs, _ := setupTestServer(t, store)

	body, _ := json.Marshal(LimiterRequest{Rate: 5, Burst: 10})
	req := httptest.NewRequest("POST", "/limiter/10.0.0.1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, store.GetLimiter("10.0.0.1").Limit())
	assert.Equal(t, 10, store.GetLimiter("10.0.0.1").Burst())

	w = do(rs, "POST", "/limiter/10.0.0.1", `{"rate": -1, "burst": 10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, strings.ToLower(w.Body.String()), `"message":"rate: `)
}
