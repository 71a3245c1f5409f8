package routes

import (
	"github.com/gin-gonic/gin"

	"qwiklearn/auth"
	"qwiklearn/handlers"
)

// SetupRoutes configures the application routes
func SetupRoutes(r *gin.Engine) {
	// Public routes
	r.GET("/", handlers.IndexHandler)
	r.GET("/register", handlers.RegisterPageHandler)
	r.POST("/register", handlers.RegisterHandler)
	r.GET("/login", handlers.LoginPageHandler)
	r.POST("/login", handlers.LoginHandler)

	// Protected routes
	protected := r.Group("/")
	protected.Use(auth.Middleware())

	protected.GET("/logout", handlers.LogoutHandler)
	protected.GET("/dashboard", handlers.DashboardHandler)

	protected.GET("/chat", handlers.ChatPageHandler)
	protected.POST("/chat", handlers.ChatHandler)

	protected.GET("/syllabi", handlers.ListSyllabiHandler)
	protected.POST("/syllabi", handlers.CreateSyllabusHandler)
	protected.GET("/syllabi/:id", handlers.ViewSyllabusHandler)
	protected.GET("/syllabi/:id/download", handlers.DownloadSyllabusHandler)
	protected.DELETE("/syllabi/:id", handlers.DeleteSyllabusHandler)

	protected.POST("/generate_notes", handlers.GenerateNotesHandler)
	protected.POST("/generate_assignment", handlers.GenerateAssignmentHandler)

	protected.GET("/assignments", handlers.ListAssignmentsHandler)
	protected.GET("/assignments/:id", handlers.ViewAssignmentHandler)
	protected.POST("/assignments/:id/submit", handlers.SubmitAssignmentHandler)

	protected.GET("/todos", handlers.ListTodosHandler)
	protected.POST("/todos", handlers.CreateTodoHandler)
	protected.PUT("/todos/:id", handlers.UpdateTodoHandler)
	protected.DELETE("/todos/:id", handlers.DeleteTodoHandler)

	protected.GET("/calendar", handlers.CalendarHandler)

	protected.GET("/study-plans", handlers.ListStudyPlansHandler)
	protected.GET("/study-plans/:id", handlers.ViewStudyPlanHandler)
	protected.POST("/generate-study-plan", handlers.GenerateStudyPlanHandler)
}
