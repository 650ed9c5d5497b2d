// Package aggregate rebuilds relational views on top of the document
// store: a meter joined with its PODs, runs joined with their schedules,
// and column-oriented pivots of measurement series.
//
// Each view has a native strategy (one pipeline using $lookup or $group)
// and a fallback strategy (sequential queries reshaped in memory). The
// strategy is a deployment capability; both return identical results. The
// fallback is not transactional, so a catalog write landing between its
// queries can be observed.
package aggregate

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/db"
	"liyu1981.xyz/energy-opdb-service/pkg/metrics"
)

const (
	StrategyNative   = "native"
	StrategyFallback = "fallback"
)

type Engine struct {
	database *mongo.Database
	native   bool
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewEngine(database *mongo.Database, caps db.Capabilities, m *metrics.Metrics) *Engine {
	if m == nil {
		m = metrics.Default()
	}
	return &Engine{
		database: database,
		native:   caps.NativeLookup,
		metrics:  m,
		logger:   common.GetLoggerWith(common.LoggerNameAggregate),
	}
}

// WithNative returns a copy of e using the given strategy.
func (e *Engine) WithNative(native bool) *Engine {
	c := *e
	c.native = native
	return &c
}

func (e *Engine) Strategy() string {
	if e.native {
		return StrategyNative
	}
	return StrategyFallback
}

func (e *Engine) observe(view string) {
	e.metrics.JoinStrategy.WithLabelValues(view, e.Strategy()).Inc()
}

// TimeWindow builds an inclusive timestamp predicate. It returns nil when
// neither bound is set.
func TimeWindow(from, until *time.Time) bson.D {
	var window bson.D
	if from != nil {
		window = append(window, bson.E{Key: "$gte", Value: *from})
	}
	if until != nil {
		window = append(window, bson.E{Key: "$lte", Value: *until})
	}
	return window
}
