package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"novel-studio-api/pkg/logger"
)

// Trace 为每个请求开启 OpenTelemetry span
func Trace(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceContext 把 trace_id/span_id 写入日志上下文与响应头；须放在 Trace 之后
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := trace.SpanFromContext(c.Request.Context()).SpanContext()
		if !sc.IsValid() {
			c.Next()
			return
		}

		traceID := sc.TraceID().String()
		c.Set("trace_id", traceID)
		ctx := logger.WithContext(c.Request.Context(), logger.TraceIDKey, traceID)
		ctx = logger.WithContext(ctx, logger.SpanIDKey, sc.SpanID().String())
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Trace-ID", traceID)

		c.Next()
	}
}
