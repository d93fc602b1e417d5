package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"meal-genie/internal/metrics"
)

// getDailyUsage reports per-day LLM call totals for the last N days
// (default 30, overridable with ?days=N).
func (s *Server) getDailyUsage(c *gin.Context) {
	days := 30
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	usage, err := s.usage.GetDailyUsage(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to get usage"})
		return
	}
	if usage == nil {
		usage = []metrics.DailyUsage{}
	}
	c.JSON(http.StatusOK, usage)
}
