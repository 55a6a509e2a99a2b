package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dorysbakehouse/bakehouse/backend/internal/storage"
)

var startTime = time.Now()

// Pinger is implemented by dependencies that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealth adds the liveness and readiness endpoints. /ready returns 200
// only when the document store and, if it can be pinged, the upload backend
// respond.
func RegisterHealth(r *gin.Engine, docs Pinger, uploads storage.Uploader) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		ready := true
		deps := map[string]bool{}

		deps["store"] = docs.Ping(ctx) == nil
		ready = ready && deps["store"]

		deps["uploads"] = uploads != nil
		if p, ok := storage.Unwrap(uploads).(Pinger); ok {
			deps["uploads"] = p.Ping(ctx) == nil
		}
		ready = ready && deps["uploads"]

		uptime := time.Since(startTime).Round(time.Second).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})
}
