package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bencium/agi-detector/engine"
	"github.com/bencium/agi-detector/scraper"
)

// GetHealth returns a handler for GET /api/v1/health.
func GetHealth(eng *engine.Engine, sc *scraper.Scraper, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"uptime_seconds":  int(time.Since(startTime).Seconds()),
			"browser_started": sc.Started(),
			"cache_entries":   eng.CacheLen(),
		})
	}
}
