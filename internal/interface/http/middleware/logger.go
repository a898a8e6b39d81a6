package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/techhaven/pkg/logger"
	"github.com/xiebiao/techhaven/pkg/tracing"
)

// RequestIDHeader 请求ID头，客户端未携带时生成
const RequestIDHeader = "X-Request-ID"

// RequestLogger 为每个请求注入带request_id、trace_id的logger，结束时记录访问日志
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		fields := []zap.Field{zap.String("request_id", requestID)}
		if traceID := tracing.TraceID(c.Request.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		reqLog := log.With(fields...)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLog))

		c.Next()

		status := c.Writer.Status()
		accessFields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("size", c.Writer.Size()),
		}
		if uid := GetUserID(c); uid != 0 {
			accessFields = append(accessFields, zap.Uint("user_id", uid))
		}
		switch {
		case status >= 500:
			reqLog.Error("request", accessFields...)
		case status >= 400:
			reqLog.Warn("request", accessFields...)
		default:
			reqLog.Info("request", accessFields...)
		}
	}
}
