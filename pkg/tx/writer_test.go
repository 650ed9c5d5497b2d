package tx

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/metrics"
	_ "liyu1981.xyz/energy-opdb-service/pkg/testing"
)

type fakeSession struct {
	ended    int
	txCalls  int
	txResult error
}

func (s *fakeSession) WithTransaction(ctx context.Context, fn func(ctx context.Context) (any, error), _ ...options.Lister[options.TransactionOptions]) (any, error) {
	s.txCalls++
	if s.txResult != nil {
		return nil, s.txResult
	}
	return fn(ctx)
}

func (s *fakeSession) EndSession(context.Context) {
	s.ended++
}

type sessionRecorder struct {
	sessions []*fakeSession
	startErr error
	txResult error
}

func (r *sessionRecorder) start() (session, error) {
	if r.startErr != nil {
		return nil, r.startErr
	}
	s := &fakeSession{txResult: r.txResult}
	r.sessions = append(r.sessions, s)
	return s, nil
}

func (r *sessionRecorder) allEnded(t *testing.T) {
	t.Helper()
	for i, s := range r.sessions {
		assert.Equal(t, 1, s.ended, "session %d", i)
	}
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func newTestWriter(rec *sessionRecorder, attempts int) (*MongoWriter, *metrics.Metrics) {
	m := metrics.NewMetrics()
	return newWriter(rec.start, fastRetry(attempts), m), m
}

func TestRunCommitsAndEndsSession(t *testing.T) {
	common.SetTestLoggerNop()
	rec := &sessionRecorder{}
	w, m := newTestWriter(rec, 3)

	calls := 0
	err := w.Run(context.Background(), "add_meters", func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, rec.sessions, 1)
	rec.allEnded(t)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TxTotal.WithLabelValues("add_meters", "ok")))
}

func TestRunEndsSessionOnRejection(t *testing.T) {
	common.SetTestLoggerNop()
	rec := &sessionRecorder{}
	w, m := newTestWriter(rec, 3)

	rejection := errs.NotFoundReference("assets_catalog", []any{999})
	err := w.Run(context.Background(), "inject", func(ctx context.Context) error {
		return rejection
	})
	assert.Same(t, rejection, err)
	require.Len(t, rec.sessions, 1, "non-transient errors are not retried")
	rec.allEnded(t)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TxTotal.WithLabelValues("inject", string(errs.KindNotFoundReference))))
}

func TestRunEndsSessionOnPanic(t *testing.T) {
	common.SetTestLoggerNop()
	rec := &sessionRecorder{}
	w, _ := newTestWriter(rec, 1)

	assert.Panics(t, func() {
		_ = w.Run(context.Background(), "boom", func(ctx context.Context) error {
			panic("boom")
		})
	})
	rec.allEnded(t)
}

func TestRunClassifiesEngineErrors(t *testing.T) {
	common.SetTestLoggerNop()
	rec := &sessionRecorder{txResult: mongo.WriteException{WriteErrors: []mongo.WriteError{{Index: 0, Code: 11000, Message: "E11000 duplicate key"}}}}
	w, _ := newTestWriter(rec, 3)

	err := w.Run(context.Background(), "add_pods", func(ctx context.Context) error { return nil })
	assert.True(t, errs.Is(err, errs.KindConflict))
	var we mongo.WriteException
	assert.ErrorAs(t, err, &we, "the engine error stays reachable through Unwrap")
	rec.allEnded(t)
}

func TestRunRetriesTransientFailures(t *testing.T) {
	common.SetTestLoggerNop()
	rec := &sessionRecorder{}
	w, m := newTestWriter(rec, 3)

	calls := 0
	netErr := mongo.CommandError{Code: 6, Message: "host unreachable", Labels: []string{"NetworkError"}}
	err := w.Run(context.Background(), "create_run", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return netErr
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, rec.sessions, 3)
	rec.allEnded(t)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.TxRetries.WithLabelValues("create_run")))
}

func TestRunGivesUpAfterMaxAttempts(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zap.DebugLevel)
	rec := &sessionRecorder{txResult: mongo.CommandError{Code: 6, Labels: []string{"NetworkError"}}}
	w, _ := newTestWriter(rec, 2)

	err := w.Run(context.Background(), "create_run", func(ctx context.Context) error { return nil })
	assert.True(t, errs.Is(err, errs.KindInfrastructure))
	assert.True(t, errs.IsTransient(err))
	assert.Len(t, rec.sessions, 2)
	rec.allEnded(t)

	logs := common.ParseLogs(&buf)
	var sawError bool
	for _, entry := range logs {
		if entry["msg"] == "Unit of work failed" {
			sawError = true
			assert.Equal(t, "create_run", entry["unit"])
		}
	}
	assert.True(t, sawError)
}

func TestRunSessionStartFailure(t *testing.T) {
	common.SetTestLoggerNop()
	rec := &sessionRecorder{startErr: errors.New("client is disconnected")}
	w, _ := newTestWriter(rec, 1)

	err := w.Run(context.Background(), "x", func(ctx context.Context) error { return nil })
	assert.True(t, errs.Is(err, errs.KindInfrastructure))
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	transient := mongo.CommandError{Code: 6, Labels: []string{"NetworkError"}}
	err := retry(ctx, RetryConfig{MaxAttempts: 5, InitialDelay: time.Second}, func(int) error {
		calls++
		return errs.FromMongo(transient)
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoReturnsLastValue(t *testing.T) {
	common.SetTestLoggerNop()
	rec := &sessionRecorder{}
	w, _ := newTestWriter(rec, 1)

	v, err := Do(context.Background(), w, "do", func(ctx context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = Do(context.Background(), w, "do", func(ctx context.Context) (int, error) { return 7, errs.Validation("bad") })
	assert.Error(t, err)
	assert.Zero(t, v)
}
