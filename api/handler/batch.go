package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bencium/agi-detector/engine"
	"github.com/bencium/agi-detector/models"
)

// maxBatchTargets caps one batch request.
const maxBatchTargets = 100

// defaultBatchConcurrency bounds in-flight acquisitions when the caller
// doesn't specify one.
const defaultBatchConcurrency = 5

// BatchRequest is the body of POST /api/v1/acquire/batch.
type BatchRequest struct {
	Targets     []models.AcquisitionTarget `json:"targets" binding:"required"`
	Concurrency int                        `json:"concurrency"`
}

// BatchResponse carries one result per input target, in input order.
type BatchResponse struct {
	Total   int                        `json:"total"`
	Failed  int                        `json:"failed"`
	Results []models.AcquisitionResult `json:"results"`
}

// PostAcquireBatch returns a handler for POST /api/v1/acquire/batch: bulk
// acquisition with bounded parallelism. Per-target failures are reported in
// their result slot and never fail the request.
func PostAcquireBatch(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		if len(req.Targets) == 0 || len(req.Targets) > maxBatchTargets {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "between 1 and 100 targets per batch",
				},
			})
			return
		}
		if req.Concurrency <= 0 {
			req.Concurrency = defaultBatchConcurrency
		}

		results := eng.AcquireBatch(c.Request.Context(), req.Targets, req.Concurrency)

		var failed int
		for i := range results {
			if !results[i].Succeeded {
				failed++
			}
		}
		c.JSON(http.StatusOK, BatchResponse{
			Total:   len(results),
			Failed:  failed,
			Results: results,
		})
	}
}
