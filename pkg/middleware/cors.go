package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS allows any origin, the way the public site and the admin page call the
// API from other hosts, and answers preflight requests directly.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Request-ID")
		h.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
