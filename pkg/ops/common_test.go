package ops

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

	"liyu1981.xyz/energy-opdb-service/pkg/metrics"
	"liyu1981.xyz/energy-opdb-service/pkg/ops/mocks"
	"liyu1981.xyz/energy-opdb-service/pkg/tx"
	txmocks "liyu1981.xyz/energy-opdb-service/pkg/tx/mocks"
)

// GetMockOPS builds an OPS without a database: the writer and the integrity
// service are mocks, every other service is the real one.
func GetMockOPS(t *testing.T) (*gomock.Controller, *OPS, *txmocks.MockWriter, *mocks.MockIIntegrity) {
	ctrl := gomock.NewController(t)

	writer := txmocks.NewMockWriter(ctrl)
	integrity := mocks.NewMockIIntegrity(ctrl)

	o := &OPS{Writer: writer, Metrics: metrics.NewMetrics()}
	o.WithDefaultServices()
	o.WithServices(ServiceOpts{Integrity: integrity})

	return ctrl, o, writer, integrity
}

// runWork makes the mocked writer execute the unit of work it receives.
func runWork(ctx context.Context, name string, work tx.UnitOfWork) error {
	return work(ctx)
}
