package models

import (
	"time"

	"gorm.io/datatypes"
)

// User model
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:80;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:120;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Syllabus model
type Syllabus struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Content   string    `json:"content" gorm:"type:text"`
	FilePath  *string   `json:"file_path" gorm:"size:255"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Note model
type Note struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Title      string    `json:"title" gorm:"size:200;not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	SyllabusID uint      `json:"syllabus_id" gorm:"index;not null"`
	Topic      string    `json:"topic" gorm:"size:200"`
	Subtopic   string    `json:"subtopic" gorm:"size:200"`
	SortOrder  int       `json:"order" gorm:"column:sort_order;default:0"`
	CreatedAt  time.Time `json:"created_at"`
}

// Question types generated by the model and understood by the grader.
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionFillBlank      = "fill_blank"
	QuestionDragDrop       = "drag_drop"
	QuestionOrdering       = "ordering"
	QuestionShortAnswer    = "short_answer"
	QuestionLongAnswer     = "long_answer"
)

// Question model. CorrectAnswer holds plain text, or a JSON-encoded list
// for ordering and drag_drop questions.
type Question struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	AssignmentID  uint           `json:"assignment_id" gorm:"index;not null"`
	QuestionType  string         `json:"question_type" gorm:"size:20;not null"`
	QuestionText  string         `json:"question_text" gorm:"type:text;not null"`
	Options       datatypes.JSON `json:"options"`
	CorrectAnswer string         `json:"correct_answer" gorm:"type:text;not null"`
	Points        int            `json:"points" gorm:"default:1"`
	SortOrder     int            `json:"order" gorm:"column:sort_order;default:0"`
	Topic         string         `json:"topic" gorm:"size:200"`
	Subtopic      string         `json:"subtopic" gorm:"size:200"`
	Explanation   string         `json:"explanation" gorm:"type:text"`
}

// Assignment model. StudentAnswers and AIFeedback are written once per
// submission; a resubmission overwrites them.
type Assignment struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Title          string         `json:"title" gorm:"size:200;not null"`
	Description    string         `json:"description" gorm:"type:text"`
	DueDate        time.Time      `json:"due_date" gorm:"not null"`
	Completed      bool           `json:"completed" gorm:"default:false"`
	StudentAnswers datatypes.JSON `json:"student_answers"`
	AIFeedback     datatypes.JSON `json:"ai_feedback"`
	UserID         uint           `json:"user_id" gorm:"index;not null"`
	SyllabusID     uint           `json:"syllabus_id" gorm:"index;not null"`
	TotalPoints    int            `json:"total_points" gorm:"default:0"`
	EarnedPoints   int            `json:"earned_points" gorm:"default:0"`
	Questions      []Question     `json:"questions" gorm:"foreignKey:AssignmentID"`
}

// Todo model. Priority: 0 low, 1 medium, 2 high.
type Todo struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Description string     `json:"description" gorm:"type:text"`
	DueDate     *time.Time `json:"due_date"`
	Priority    int        `json:"priority" gorm:"default:0"`
	Completed   bool       `json:"completed" gorm:"default:false"`
	UserID      uint       `json:"user_id" gorm:"index;not null"`
	CreatedAt   time.Time  `json:"created_at"`
}

// StudyPlan model. Content is the raw model JSON for the plan.
type StudyPlan struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Title     string         `json:"title" gorm:"size:200;not null"`
	StartDate time.Time      `json:"start_date" gorm:"not null"`
	EndDate   time.Time      `json:"end_date" gorm:"not null"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Content   datatypes.JSON `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

// RegisterRequest for user registration (HTML form)
type RegisterRequest struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
}

// LoginRequest for authentication (HTML form)
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// ChatRequest for the free-form Q&A proxy
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// CreateSyllabusRequest for text-only syllabus creation
type CreateSyllabusRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// GenerateRequest targets a syllabus for notes or assignment generation
type GenerateRequest struct {
	SyllabusID uint `json:"syllabus_id" binding:"required"`
}

// SubmitAnswersRequest carries the answer map keyed by "q<question_id>".
// Values are strings, or lists for ordering/drag_drop questions.
type SubmitAnswersRequest struct {
	Answers map[string]any `json:"answers" binding:"required"`
}

// TodoRequest for todo creation and updates. Pointers distinguish
// omitted fields on update.
type TodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    *int    `json:"priority"`
	Completed   *bool   `json:"completed"`
}

// GenerateStudyPlanRequest carries the plan date range (ISO dates)
type GenerateStudyPlanRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}
