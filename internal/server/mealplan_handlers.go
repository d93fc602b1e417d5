package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"meal-genie/internal/planner"
)

// createMealPlan validates the request, persists a pending record, and
// schedules generation detached from the response. The client receives the
// pending record immediately; completion arrives over the push channel.
func (s *Server) createMealPlan(c *gin.Context) {
	var req planner.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	u := currentUser(c)
	rec := planner.PlanRecord{
		ID:          uuid.NewString(),
		UserID:      u.ID,
		AuthUID:     u.AuthUID,
		PlanRequest: req,
		Status:      planner.StatusPending,
		CreatedAt:   time.Now(),
	}

	if err := s.plans.Insert(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to create meal plan"})
		return
	}

	s.generator.Run(rec.ID)

	c.JSON(http.StatusOK, rec)
}

func (s *Server) listMealPlans(c *gin.Context) {
	u := currentUser(c)
	records, err := s.plans.ListByUser(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to list meal plans"})
		return
	}
	if records == nil {
		records = []planner.PlanRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) getMealPlan(c *gin.Context) {
	u := currentUser(c)
	rec, err := s.plans.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to get meal plan"})
		return
	}
	if rec == nil || rec.UserID != u.ID {
		c.JSON(http.StatusNotFound, gin.H{"detail": "meal plan not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteMealPlan(c *gin.Context) {
	u := currentUser(c)
	deleted, err := s.plans.Delete(c.Request.Context(), c.Param("id"), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to delete meal plan"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"detail": "meal plan not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// retryMealPlan re-runs generation for a failed record, reusing its ID.
// The error-to-pending transition is a compare-and-swap, so a record that
// is pending or completed is never re-run.
func (s *Server) retryMealPlan(c *gin.Context) {
	u := currentUser(c)
	id := c.Param("id")

	rec, err := s.plans.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to get meal plan"})
		return
	}
	if rec == nil || rec.UserID != u.ID {
		c.JSON(http.StatusNotFound, gin.H{"detail": "meal plan not found"})
		return
	}

	reset, err := s.plans.ResetForRetry(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to retry meal plan"})
		return
	}
	if !reset {
		c.JSON(http.StatusConflict, gin.H{"detail": "meal plan is not in error state"})
		return
	}

	s.generator.Run(id)

	rec.Status = planner.StatusPending
	rec.PlanData = nil
	rec.ErrorDetail = ""
	rec.CompletedAt = nil
	c.JSON(http.StatusOK, rec)
}

// resubmitMealPlan creates a fresh pending record from an existing one's
// request and schedules generation for it. The original record is left
// untouched.
func (s *Server) resubmitMealPlan(c *gin.Context) {
	u := currentUser(c)

	original, err := s.plans.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to get meal plan"})
		return
	}
	if original == nil || original.UserID != u.ID {
		c.JSON(http.StatusNotFound, gin.H{"detail": "meal plan not found"})
		return
	}

	rec := planner.PlanRecord{
		ID:          uuid.NewString(),
		UserID:      u.ID,
		AuthUID:     u.AuthUID,
		PlanRequest: original.PlanRequest,
		Status:      planner.StatusPending,
		CreatedAt:   time.Now(),
	}

	if err := s.plans.Insert(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to resubmit meal plan"})
		return
	}

	s.generator.Run(rec.ID)

	c.JSON(http.StatusOK, rec)
}
