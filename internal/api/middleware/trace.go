package middleware

import (
	"github.com/gin-gonic/gin"

	"habitpact/pkg/trace"
)

// TraceMiddleware propagates an incoming trace id, or mints one, and
// echoes it on the response.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName())
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}

		ctx := trace.WithContext(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(trace.HeaderName(), traceID)

		c.Next()
	}
}
