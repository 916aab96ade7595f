package middleware

import (
	"github.com/gin-gonic/gin"

	"anchorstock/internal/core/id"
	"anchorstock/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a request id to the context for log correlation. An
// inbound X-Request-ID is honored; otherwise one is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = id.New().String()
		}

		c.Set("request_id", reqID)
		c.Header(requestIDHeader, reqID)

		ctx := logger.WithRequestID(c.Request.Context(), reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
