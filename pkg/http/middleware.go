package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
	"liyu1981.xyz/energy-opdb-service/pkg/errs"
)

func serverLogger() *zap.Logger {
	return common.GetLoggerWith(common.LoggerNameRestfulServer)
}

// RequestID accepts the caller's X-Request-ID or mints one, echoes it back
// and stores it in the request context for the loggers below.
func (rs *RestfulServer) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(common.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(common.HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(common.ContextWithRequestID(c.Request.Context(), requestID))

		start := time.Now()
		c.Next()

		serverLogger().Debug("Handled request",
			zap.String(common.LoggerFieldRequestID, requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// RateLimit keys the limiter store by client address.
func (rs *RestfulServer) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rs.CheckClientLimiter(c.ClientIP()) {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

// fail renders err in the error body shape shared by every route.
func fail(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		common.LoggerFromContext(c.Request.Context(), serverLogger()).
			Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": errs.ToBody(err)})
}
