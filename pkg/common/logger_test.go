package common

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "liyu1981.xyz/energy-opdb-service/pkg/testing"
)

func TestLoggingCapture(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	logger := GetLogger()
	logger.Info("Test log message", zap.String("key", "value"))

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Test log message") {
		t.Errorf("expected log output to contain message, got: %s", logOutput)
	}
}

func TestLoggerFromContextCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	LoggerFromContext(ctx, GetLoggerWith(LoggerNameOpsCore)).Info("with request")

	logOutput := buf.String()
	if !strings.Contains(logOutput, `"request_id":"req-42"`) {
		t.Errorf("expected request id in log output, got: %s", logOutput)
	}
	if !strings.Contains(logOutput, `"logger":"ops_core"`) {
		t.Errorf("expected logger name in log output, got: %s", logOutput)
	}
}

func TestLoggerFromContextWithoutRequestID(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	LoggerFromContext(context.Background(), GetLogger()).Info("no request")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("did not expect a request id, got: %s", buf.String())
	}
	if RequestIDFromContext(nil) != "" { //nolint:staticcheck
		t.Error("expected empty request id for nil context")
	}
}
