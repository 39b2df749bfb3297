package middleware

import (
	"strconv"
	"time"

	"github.com/SscSPs/ledger_migrator/internal/platform/observability"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request latency by route template.
func MetricsMiddleware(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
