package delivery

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SyncRateLimiter throttles manual sync triggers. Each pass opens a fresh
// IMAP session, so hammering the endpoint is pure waste; one trigger per
// interval with a small burst is plenty for a dashboard refresh button.
func SyncRateLimiter(interval time.Duration, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(interval), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "sync already requested, try again shortly"})
			return
		}
		c.Next()
	}
}
