package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"qwiklearn/auth"
	"qwiklearn/db"
	"qwiklearn/generator"
	"qwiklearn/grader"
	"qwiklearn/logger"
	"qwiklearn/models"
)

// GenerateAssignmentHandler runs the assignment generation pipeline
func GenerateAssignmentHandler(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	syllabus, err := fetchOwnedSyllabus(c, req.SyllabusID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	assignment, data, err := generator.NewAssignment(c.Request.Context(), db.DB, LLM, syllabus, auth.CurrentUserID(c))
	if err != nil {
		logger.Log.Errorw("assignment generation failed", "syllabus_id", syllabus.ID, "error", err)
		jsonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Assignment created successfully",
		"id":        assignment.ID,
		"structure": data,
	})
}

// ListAssignmentsHandler renders the user's assignments
func ListAssignmentsHandler(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var assignments []models.Assignment
	if err := db.DB.Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		logger.Log.Errorw("assignments query failed", "user_id", userID, "error", err)
		jsonError(c, err)
		return
	}

	c.HTML(http.StatusOK, "assignments.html", pageData(c, gin.H{
		"Assignments": assignments,
		"Now":         time.Now().UTC(),
	}))
}

// ViewAssignmentHandler renders one assignment with its questions in
// creation order. The edit query flag re-opens a completed assignment.
func ViewAssignmentHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		htmlError(c, "/assignments", "Invalid assignment ID")
		return
	}

	var assignment models.Assignment
	err = db.DB.Preload("Questions", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sort_order")
	}).First(&assignment, id).Error
	if err != nil {
		htmlError(c, "/assignments", "Assignment not found")
		return
	}
	if assignment.UserID != auth.CurrentUserID(c) {
		htmlError(c, "/assignments", "Unauthorized access")
		return
	}

	c.HTML(http.StatusOK, "view_assignment.html", pageData(c, gin.H{
		"Assignment": assignment,
		"EditMode":   c.Query("edit") == "1",
	}))
}

// SubmitAssignmentHandler grades a submitted answer map and stores the
// outcome. A resubmission overwrites the previous one.
func SubmitAssignmentHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	var assignment models.Assignment
	if err := db.DB.First(&assignment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
			return
		}
		jsonError(c, err)
		return
	}
	if assignment.UserID != auth.CurrentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	result, err := grader.Grade(c.Request.Context(), db.DB, LLM, &assignment, req.Answers)
	if err != nil {
		logger.Log.Errorw("assignment grading failed", "assignment_id", assignment.ID, "error", err)
		jsonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Assignment submitted successfully",
		"total_points":  result.TotalPoints,
		"earned_points": result.EarnedPoints,
		"feedback":      result.Feedback,
	})
}
