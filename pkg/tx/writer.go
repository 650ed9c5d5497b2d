// Package tx runs units of work inside storage-engine transactions.
//
// Every multi-document write in the operation layer goes through a Writer:
// it owns the session lifecycle, classifies engine errors into the errs
// taxonomy and replays the whole unit of work on transient failures.
package tx

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/metrics"
)

// UnitOfWork is a set of related writes. It must only use the context it
// is given so the writes join the transaction, and it may run more than
// once.
type UnitOfWork func(ctx context.Context) error

//go:generate mockgen -source=writer.go -destination=mocks/mocks.go -package=mocks -exclude_interfaces=session
type Writer interface {
	Run(ctx context.Context, name string, work UnitOfWork) error
}

type session interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) (any, error), opts ...options.Lister[options.TransactionOptions]) (any, error)
	EndSession(ctx context.Context)
}

type MongoWriter struct {
	newSession func() (session, error)
	retry      RetryConfig
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewWriter(client *mongo.Client, maxAttempts int, m *metrics.Metrics) *MongoWriter {
	return newWriter(func() (session, error) {
		return client.StartSession()
	}, DefaultRetryConfig(maxAttempts), m)
}

func newWriter(newSession func() (session, error), cfg RetryConfig, m *metrics.Metrics) *MongoWriter {
	if m == nil {
		m = metrics.Default()
	}
	return &MongoWriter{
		newSession: newSession,
		retry:      cfg,
		metrics:    m,
		logger:     common.GetLoggerWith(common.LoggerNameTxWriter),
	}
}

func (w *MongoWriter) Run(ctx context.Context, name string, work UnitOfWork) error {
	logger := common.LoggerFromContext(ctx, w.logger).With(zap.String("unit", name))
	start := time.Now()

	err := retry(ctx, w.retry, func(attempt int) error {
		if attempt > 1 {
			w.metrics.TxRetries.WithLabelValues(name).Inc()
			logger.Warn("Retrying unit of work", zap.Int("attempt", attempt))
		}
		return w.runOnce(ctx, work)
	})

	w.metrics.TxDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		kind := errs.KindOf(err)
		w.metrics.TxTotal.WithLabelValues(name, string(kind)).Inc()
		if kind == errs.KindInfrastructure {
			logger.Error("Unit of work failed", zap.String("kind", string(kind)), zap.Error(err))
		} else {
			logger.Info("Unit of work rejected", zap.String("kind", string(kind)), zap.Error(err))
		}
		return err
	}

	w.metrics.TxTotal.WithLabelValues(name, "ok").Inc()
	logger.Debug("Unit of work committed", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (w *MongoWriter) runOnce(ctx context.Context, work UnitOfWork) error {
	sess, err := w.newSession()
	if err != nil {
		return errs.FromMongo(err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	_, err = sess.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, work(txCtx)
	})
	return errs.FromMongo(err)
}

// Do runs fn as a unit of work and returns the value of its last attempt.
func Do[T any](ctx context.Context, w Writer, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := w.Run(ctx, name, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
