package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bencium/agi-detector/engine"
	"github.com/bencium/agi-detector/models"
)

// PostAcquire returns a handler for POST /api/v1/acquire: single-target
// acquisition through the full strategy cascade.
func PostAcquire(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var target models.AcquisitionTarget
		if err := c.ShouldBindJSON(&target); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		result := eng.Acquire(c.Request.Context(), target)
		c.JSON(http.StatusOK, result)
	}
}
