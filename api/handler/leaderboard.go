package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bencium/agi-detector/adapter"
	"github.com/bencium/agi-detector/engine"
	"github.com/bencium/agi-detector/models"
)

// GetLeaderboard returns a handler for GET /api/v1/leaderboard. The
// response payload carries a provenance tag ("scraped" or "fallback") that
// consumers must check before trusting the scores. The scrape pays a token
// from the engine's shared outbound budget like every other strategy.
func GetLeaderboard(lb *adapter.LeaderboardStrategy, eng *engine.Engine, defaultURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetURL := c.Query("url")
		if targetURL == "" {
			targetURL = defaultURL
		}

		if err := eng.Throttle(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeTimeout,
					Message: err.Error(),
				},
			})
			return
		}

		payload, err := lb.Acquire(c.Request.Context(), models.AcquisitionTarget{
			URL:    targetURL,
			Source: "leaderboard",
		})
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInternal,
					Message: err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusOK, payload)
	}
}
