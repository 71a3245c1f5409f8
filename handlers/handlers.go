package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"qwiklearn/auth"
	"qwiklearn/db"
	"qwiklearn/logger"
	"qwiklearn/llm"
	"qwiklearn/models"
	"qwiklearn/utils"
)

// IndexHandler renders the landing page
func IndexHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData(c, nil))
}

// RegisterPageHandler renders the registration form
func RegisterPageHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", pageData(c, nil))
}

// RegisterHandler creates a new user account
func RegisterHandler(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		htmlError(c, "/register", "All fields are required")
		return
	}

	if !utils.ValidateEmail(req.Email) {
		htmlError(c, "/register", "Invalid email address")
		return
	}

	var count int64
	if err := db.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		logger.Log.Errorw("username lookup failed", "error", err)
		htmlError(c, "/register", "Registration failed, please try again")
		return
	}
	if count > 0 {
		htmlError(c, "/register", "Username already exists")
		return
	}

	if err := db.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		logger.Log.Errorw("email lookup failed", "error", err)
		htmlError(c, "/register", "Registration failed, please try again")
		return
	}
	if count > 0 {
		htmlError(c, "/register", "Email already registered")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Log.Errorw("password hashing failed", "error", err)
		htmlError(c, "/register", "Registration failed, please try again")
		return
	}

	user := models.User{Username: req.Username, Email: req.Email, Password: hashed}
	if err := db.DB.Create(&user).Error; err != nil {
		logger.Log.Errorw("user insert failed", "error", err)
		htmlError(c, "/register", "Registration failed, please try again")
		return
	}

	setFlash(c, "Registration successful!", "success")
	c.Redirect(http.StatusFound, "/login")
}

// LoginPageHandler renders the login form
func LoginPageHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", pageData(c, nil))
}

// LoginHandler authenticates a user and starts a session
func LoginHandler(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		htmlError(c, "/login", "Username and password are required")
		return
	}

	var user models.User
	err := db.DB.Where("username = ?", req.Username).First(&user).Error
	if err != nil || utils.ComparePassword(user.Password, req.Password) != nil {
		htmlError(c, "/login", "Invalid username or password")
		return
	}

	if err := auth.IssueSession(c, user.ID); err != nil {
		logger.Log.Errorw("session issue failed", "user_id", user.ID, "error", err)
		htmlError(c, "/login", "Login failed, please try again")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// LogoutHandler ends the session
func LogoutHandler(c *gin.Context) {
	auth.ClearSession(c)
	c.Redirect(http.StatusFound, "/")
}

// DashboardHandler shows the user's assignments and todos
func DashboardHandler(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var assignments []models.Assignment
	if err := db.DB.Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		logger.Log.Errorw("dashboard assignments query failed", "user_id", userID, "error", err)
		jsonError(c, err)
		return
	}
	var todos []models.Todo
	if err := db.DB.Where("user_id = ?", userID).Find(&todos).Error; err != nil {
		logger.Log.Errorw("dashboard todos query failed", "user_id", userID, "error", err)
		jsonError(c, err)
		return
	}

	recent := make([]models.Assignment, len(assignments))
	copy(recent, assignments)
	sort.Slice(recent, func(i, j int) bool { return recent[i].DueDate.After(recent[j].DueDate) })
	if len(recent) > 5 {
		recent = recent[:5]
	}

	c.HTML(http.StatusOK, "dashboard.html", pageData(c, gin.H{
		"Assignments":       assignments,
		"RecentAssignments": recent,
		"Todos":             todos,
	}))
}

// ChatPageHandler renders the chat view
func ChatPageHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "chat.html", pageData(c, nil))
}

// ChatHandler proxies a free-form question to the model
func ChatHandler(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	response, err := LLM.Complete(c.Request.Context(), llm.ChatSystemPrompt, req.Message)
	if err != nil {
		logger.Log.Errorw("chat completion failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": response})
}
