package middleware

import (
	"time"

	"quicknotes/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records count, latency and size of every request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.ActiveRequests.Inc()
		defer metrics.ActiveRequests.Dec()

		c.Next()

		// route template keeps note ids out of the label set
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start), c.Writer.Size())
	}
}
