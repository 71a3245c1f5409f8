package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qwiklearn/auth"
	"qwiklearn/db"
	"qwiklearn/generator"
	"qwiklearn/logger"
	"qwiklearn/models"
)

// ListStudyPlansHandler renders the user's plans, newest first
func ListStudyPlansHandler(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var plans []models.StudyPlan
	err := db.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plans).Error
	if err != nil {
		logger.Log.Errorw("study plans query failed", "user_id", userID, "error", err)
		jsonError(c, err)
		return
	}
	c.HTML(http.StatusOK, "study_plans.html", pageData(c, gin.H{"Plans": plans}))
}

// ViewStudyPlanHandler renders one plan
func ViewStudyPlanHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		htmlError(c, "/study-plans", "Invalid study plan ID")
		return
	}

	var plan models.StudyPlan
	if err := db.DB.First(&plan, id).Error; err != nil {
		htmlError(c, "/study-plans", "Study plan not found")
		return
	}
	if plan.UserID != auth.CurrentUserID(c) {
		htmlError(c, "/study-plans", "Unauthorized access")
		return
	}

	c.HTML(http.StatusOK, "view_study_plan.html", pageData(c, gin.H{
		"Plan":        plan,
		"ContentJSON": template.JS(plan.Content),
	}))
}

// GenerateStudyPlanHandler runs the study plan generation pipeline over
// the requested date range.
func GenerateStudyPlanHandler(c *gin.Context) {
	var req models.GenerateStudyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	start, err := parseISO(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date"})
		return
	}
	end, err := parseISO(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must not be before start date"})
		return
	}

	plan, data, err := generator.StudyPlan(c.Request.Context(), db.DB, LLM, auth.CurrentUserID(c), start, end)
	if err != nil {
		logger.Log.Errorw("study plan generation failed", "error", err)
		jsonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Study plan generated successfully",
		"id":      plan.ID,
		"plan":    data,
	})
}
