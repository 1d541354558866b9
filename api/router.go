// Package api wires the gin HTTP surface over the acquisition engine.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bencium/agi-detector/adapter"
	"github.com/bencium/agi-detector/api/handler"
	"github.com/bencium/agi-detector/config"
	"github.com/bencium/agi-detector/engine"
	"github.com/bencium/agi-detector/scraper"
)

// defaultLeaderboardURL is the benchmark leaderboard scraped when the
// request doesn't name one.
const defaultLeaderboardURL = "https://arcprize.org/leaderboard"

// NewRouter builds the gin engine with all routes registered.
func NewRouter(eng *engine.Engine, sc *scraper.Scraper, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	leaderboard := adapter.NewLeaderboardStrategy(sc)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/acquire", handler.PostAcquire(eng))
		v1.POST("/acquire/batch", handler.PostAcquireBatch(eng))
		v1.GET("/leaderboard", handler.GetLeaderboard(leaderboard, eng, defaultLeaderboardURL))
		v1.GET("/health", handler.GetHealth(eng, sc, startTime))
	}

	return router
}
