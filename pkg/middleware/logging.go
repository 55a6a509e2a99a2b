package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dorysbakehouse/bakehouse/backend/pkg/logger"
)

// RequestLogger writes one line per request through pkg/logger.
// Server errors are logged at error level, everything else at info.
func RequestLogger() gin.HandlerFunc {
	log := logger.For("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		line := "%s %s -> %d (%s) rid=%s"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Microsecond), GetRequestID(c)}
		if len(c.Errors) > 0 {
			line += " errors=%s"
			args = append(args, c.Errors.String())
		}
		if status >= 500 {
			log.Errorf(line, args...)
			return
		}
		log.Infof(line, args...)
	}
}
