package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"qwiklearn/auth"
	"qwiklearn/db"
	"qwiklearn/logger"
	"qwiklearn/models"
)

// ListTodosHandler renders todos ordered by priority then due date
func ListTodosHandler(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var todos []models.Todo
	err := db.DB.Where("user_id = ?", userID).
		Order("priority DESC").Order("due_date").
		Find(&todos).Error
	if err != nil {
		logger.Log.Errorw("todos query failed", "user_id", userID, "error", err)
		jsonError(c, err)
		return
	}
	c.HTML(http.StatusOK, "todos.html", pageData(c, gin.H{"Todos": todos}))
}

// CreateTodoHandler creates a todo from a JSON body
func CreateTodoHandler(c *gin.Context) {
	var req models.TodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Title == nil || *req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	todo := models.Todo{
		Title:  *req.Title,
		UserID: auth.CurrentUserID(c),
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Priority != nil {
		todo.Priority = *req.Priority
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseISO(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date"})
			return
		}
		todo.DueDate = &due
	}

	if err := db.DB.Create(&todo).Error; err != nil {
		logger.Log.Errorw("todo insert failed", "error", err)
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo created successfully", "id": todo.ID})
}

// fetchOwnedTodo loads a todo and checks ownership
func fetchOwnedTodo(c *gin.Context, id int) (*models.Todo, bool) {
	var todo models.Todo
	if err := db.DB.First(&todo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		} else {
			jsonError(c, err)
		}
		return nil, false
	}
	if todo.UserID != auth.CurrentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return &todo, true
}

// UpdateTodoHandler applies the fields present in the JSON body
func UpdateTodoHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid todo ID"})
		return
	}
	todo, ok := fetchOwnedTodo(c, id)
	if !ok {
		return
	}

	var req models.TodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseISO(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due date"})
			return
		}
		todo.DueDate = &due
	}
	if req.Priority != nil {
		todo.Priority = *req.Priority
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}

	if err := db.DB.Save(todo).Error; err != nil {
		logger.Log.Errorw("todo update failed", "todo_id", todo.ID, "error", err)
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo updated successfully"})
}

// DeleteTodoHandler removes a todo
func DeleteTodoHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid todo ID"})
		return
	}
	todo, ok := fetchOwnedTodo(c, id)
	if !ok {
		return
	}

	if err := db.DB.Delete(todo).Error; err != nil {
		logger.Log.Errorw("todo delete failed", "todo_id", todo.ID, "error", err)
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}

// CalendarHandler renders todos and assignments as calendar events
func CalendarHandler(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var todos []models.Todo
	if err := db.DB.Where("user_id = ?", userID).Find(&todos).Error; err != nil {
		logger.Log.Errorw("calendar todos query failed", "user_id", userID, "error", err)
		jsonError(c, err)
		return
	}
	var assignments []models.Assignment
	if err := db.DB.Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		logger.Log.Errorw("calendar assignments query failed", "user_id", userID, "error", err)
		jsonError(c, err)
		return
	}

	events := make([]gin.H, 0, len(todos)+len(assignments))
	for _, todo := range todos {
		var start any
		if todo.DueDate != nil {
			start = todo.DueDate.Format(time.RFC3339)
		}
		events = append(events, gin.H{
			"id":    fmt.Sprintf("todo-%d", todo.ID),
			"title": todo.Title,
			"start": start,
			"end":   start,
			"extendedProps": gin.H{
				"type":        "todo",
				"description": todo.Description,
				"completed":   todo.Completed,
				"priority":    todo.Priority,
			},
		})
	}
	for _, assignment := range assignments {
		start := assignment.DueDate.Format(time.RFC3339)
		events = append(events, gin.H{
			"id":    fmt.Sprintf("assignment-%d", assignment.ID),
			"title": assignment.Title,
			"start": start,
			"end":   start,
			"extendedProps": gin.H{
				"type":        "assignment",
				"description": assignment.Description,
				"completed":   len(assignment.StudentAnswers) > 0,
				"syllabus_id": assignment.SyllabusID,
			},
		})
	}

	eventsJSON, err := json.Marshal(events)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.HTML(http.StatusOK, "calendar.html", pageData(c, gin.H{"EventsJSON": template.JS(eventsJSON)}))
}
