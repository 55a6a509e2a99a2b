package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dorysbakehouse/bakehouse/backend/pkg/metrics"
)

// Metrics counts requests by method, matched route and status. Unmatched
// paths share the "unmatched" route label to keep cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
