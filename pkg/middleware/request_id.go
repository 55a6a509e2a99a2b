package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	requestIDKey    = "requestId"
)

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
