// Package generator builds prompts from stored syllabus data, calls the
// completion API, validates the returned JSON and persists the resulting
// notes, assignments or study plans. Each generation is atomic: a response
// that fails to parse or validate creates no rows.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"qwiklearn/apperr"
	"qwiklearn/llm"
	"qwiklearn/logger"
	"qwiklearn/models"
	"qwiklearn/pdfx"
)

var validate = validator.New()

// NotesData is the validated shape of a notes generation response
type NotesData struct {
	Title  string       `json:"title" validate:"required"`
	Topics []NotesTopic `json:"topics" validate:"required,min=1,dive"`
}

type NotesTopic struct {
	Title     string          `json:"title" validate:"required"`
	Subtopics []NotesSubtopic `json:"subtopics" validate:"required,min=1,dive"`
}

type NotesSubtopic struct {
	Title     string   `json:"title" validate:"required"`
	Content   string   `json:"content" validate:"required"`
	KeyPoints []string `json:"key_points"`
	Examples  []string `json:"examples"`
	Summary   string   `json:"summary"`
}

// AssignmentData is the validated shape of an assignment generation response
type AssignmentData struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	Topics      []AssignmentTopic `json:"topics" validate:"required,min=1,dive"`
}

type AssignmentTopic struct {
	Title     string               `json:"title" validate:"required"`
	Subtopics []AssignmentSubtopic `json:"subtopics" validate:"required,min=1,dive"`
}

type AssignmentSubtopic struct {
	Title     string         `json:"title" validate:"required"`
	Questions []QuestionSpec `json:"questions" validate:"required,min=1,dive"`
}

// QuestionSpec is one generated question. CorrectAnswer is either a JSON
// string or a JSON list (ordering/drag_drop).
type QuestionSpec struct {
	Type          string          `json:"type" validate:"required,oneof=multiple_choice fill_blank drag_drop ordering short_answer long_answer"`
	Text          string          `json:"text" validate:"required"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer" validate:"required"`
	Points        int             `json:"points"`
	Explanation   string          `json:"explanation"`
}

// PlanData is the validated shape of a study plan response
type PlanData struct {
	Title string    `json:"title" validate:"required"`
	Days  []PlanDay `json:"days" validate:"required,min=1,dive"`
}

type PlanDay struct {
	Date     string        `json:"date" validate:"required"`
	Sessions []PlanSession `json:"sessions"`
}

type PlanSession struct {
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	ActivityType string `json:"activity_type"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	SyllabusID   uint   `json:"syllabus_id,omitempty"`
	AssignmentID uint   `json:"assignment_id,omitempty"`
	TodoID       uint   `json:"todo_id,omitempty"`
}

// SyllabusContent returns the syllabus text, supplemented with freshly
// extracted PDF text when the uploaded file is still readable.
func SyllabusContent(syl *models.Syllabus) string {
	content := syl.Content
	if syl.FilePath == nil || *syl.FilePath == "" {
		return content
	}
	if _, err := os.Stat(*syl.FilePath); err != nil {
		return content
	}
	pdfText, err := pdfx.ExtractText(*syl.FilePath)
	if err != nil {
		logger.Log.Warnw("pdf text extraction failed", "syllabus_id", syl.ID, "error", err)
		return content
	}
	return content + "\n\nAdditional content from PDF:\n" + pdfText
}

// Notes generates study notes for the syllabus and persists one Note per
// subtopic with strictly increasing sort order.
func Notes(ctx context.Context, gdb *gorm.DB, client llm.Client, syl *models.Syllabus) (*NotesData, error) {
	raw, err := client.CompleteJSON(ctx, llm.NotesSystemPrompt, SyllabusContent(syl))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrGeneration, err)
	}

	var data NotesData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		logger.Log.Errorw("notes response is not valid JSON", "syllabus_id", syl.ID, "error", err)
		return nil, fmt.Errorf("%w: unparseable notes response", apperr.ErrGeneration)
	}
	if err := validate.Struct(&data); err != nil {
		logger.Log.Errorw("notes response failed validation", "syllabus_id", syl.ID, "error", err)
		return nil, fmt.Errorf("%w: notes response missing required fields", apperr.ErrGeneration)
	}

	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order := 0
		for _, topic := range data.Topics {
			for _, sub := range topic.Subtopics {
				note := models.Note{
					Title:      fmt.Sprintf("%s: %s", topic.Title, sub.Title),
					Content:    formatNoteBody(sub),
					SyllabusID: syl.ID,
					Topic:      topic.Title,
					Subtopic:   sub.Title,
					SortOrder:  order,
				}
				if err := tx.Create(&note).Error; err != nil {
					return err
				}
				order++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func formatNoteBody(sub NotesSubtopic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n", sub.Title, sub.Content)
	b.WriteString("\n## Key Points\n")
	for _, point := range sub.KeyPoints {
		fmt.Fprintf(&b, "- %s\n", point)
	}
	b.WriteString("\n## Examples\n")
	for _, example := range sub.Examples {
		fmt.Fprintf(&b, "- %s\n", example)
	}
	fmt.Fprintf(&b, "\n## Summary\n%s\n", sub.Summary)
	return b.String()
}

// NewAssignment generates an assignment for the syllabus, due one week
// out, and persists it together with its questions in creation order.
func NewAssignment(ctx context.Context, gdb *gorm.DB, client llm.Client, syl *models.Syllabus, userID uint) (*models.Assignment, *AssignmentData, error) {
	raw, err := client.CompleteJSON(ctx, llm.AssignmentSystemPrompt, SyllabusContent(syl))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrGeneration, err)
	}

	var data AssignmentData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		logger.Log.Errorw("assignment response is not valid JSON", "syllabus_id", syl.ID, "error", err)
		return nil, nil, fmt.Errorf("%w: unparseable assignment response", apperr.ErrGeneration)
	}
	if err := validate.Struct(&data); err != nil {
		logger.Log.Errorw("assignment response failed validation", "syllabus_id", syl.ID, "error", err)
		return nil, nil, fmt.Errorf("%w: assignment response missing required fields", apperr.ErrGeneration)
	}

	assignment := models.Assignment{
		Title:       data.Title,
		Description: data.Description,
		DueDate:     time.Now().UTC().Add(7 * 24 * time.Hour),
		UserID:      userID,
		SyllabusID:  syl.ID,
	}

	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		order := 0
		for _, topic := range data.Topics {
			for _, sub := range topic.Subtopics {
				for _, spec := range sub.Questions {
					question, err := buildQuestion(assignment.ID, topic.Title, sub.Title, order, spec)
					if err != nil {
						return err
					}
					if err := tx.Create(question).Error; err != nil {
						return err
					}
					order++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &assignment, &data, nil
}

func buildQuestion(assignmentID uint, topic, subtopic string, order int, spec QuestionSpec) (*models.Question, error) {
	correct, err := encodeCorrectAnswer(spec.CorrectAnswer)
	if err != nil {
		return nil, fmt.Errorf("%w: bad correct_answer for question %d", apperr.ErrGeneration, order)
	}

	points := spec.Points
	if points <= 0 {
		points = 1
	}

	var options datatypes.JSON
	if len(spec.Options) > 0 {
		encoded, err := json.Marshal(spec.Options)
		if err != nil {
			return nil, err
		}
		options = datatypes.JSON(encoded)
	}

	return &models.Question{
		AssignmentID:  assignmentID,
		QuestionType:  spec.Type,
		QuestionText:  spec.Text,
		Options:       options,
		CorrectAnswer: correct,
		Points:        points,
		SortOrder:     order,
		Topic:         topic,
		Subtopic:      subtopic,
		Explanation:   spec.Explanation,
	}, nil
}

// encodeCorrectAnswer stores list answers as canonical JSON text and
// string answers as plain text.
func encodeCorrectAnswer(raw json.RawMessage) (string, error) {
	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		encoded, err := json.Marshal(asList)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}
	return "", fmt.Errorf("correct_answer is neither string nor list")
}

type planSyllabusContext struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Topics      map[string][]string `json:"topics"`
	Assignments []planAssignmentRef `json:"assignments"`
}

type planAssignmentRef struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}

type planTodoRef struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
	DueDate  string `json:"due_date,omitempty"`
}

// StudyPlan generates a study plan covering [start, end] from the user's
// syllabi, assignments and open todos, and persists it with the raw model
// JSON as content. At least one syllabus is required.
func StudyPlan(ctx context.Context, gdb *gorm.DB, client llm.Client, userID uint, start, end time.Time) (*models.StudyPlan, *PlanData, error) {
	var syllabi []models.Syllabus
	if err := gdb.WithContext(ctx).Where("user_id = ?", userID).Find(&syllabi).Error; err != nil {
		return nil, nil, err
	}
	if len(syllabi) == 0 {
		return nil, nil, fmt.Errorf("%w: you need at least one syllabus to generate a study plan", apperr.ErrValidation)
	}

	var assignments []models.Assignment
	if err := gdb.WithContext(ctx).Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		return nil, nil, err
	}
	var todos []models.Todo
	if err := gdb.WithContext(ctx).Where("user_id = ? AND completed = ?", userID, false).Find(&todos).Error; err != nil {
		return nil, nil, err
	}

	syllabiCtx := make([]planSyllabusContext, 0, len(syllabi))
	for _, syl := range syllabi {
		var notes []models.Note
		if err := gdb.WithContext(ctx).Where("syllabus_id = ?", syl.ID).Find(&notes).Error; err != nil {
			return nil, nil, err
		}
		topics := make(map[string][]string)
		for _, note := range notes {
			topics[note.Topic] = append(topics[note.Topic], note.Subtopic)
		}

		refs := []planAssignmentRef{}
		for _, a := range assignments {
			if a.SyllabusID == syl.ID {
				refs = append(refs, planAssignmentRef{ID: a.ID, Title: a.Title, DueDate: a.DueDate.Format(time.RFC3339)})
			}
		}
		syllabiCtx = append(syllabiCtx, planSyllabusContext{ID: syl.ID, Title: syl.Title, Topics: topics, Assignments: refs})
	}

	todoRefs := make([]planTodoRef, 0, len(todos))
	for _, t := range todos {
		ref := planTodoRef{ID: t.ID, Title: t.Title, Priority: t.Priority}
		if t.DueDate != nil {
			ref.DueDate = t.DueDate.Format(time.RFC3339)
		}
		todoRefs = append(todoRefs, ref)
	}

	userMessage, err := json.Marshal(map[string]any{
		"start_date": start.Format(time.RFC3339),
		"end_date":   end.Format(time.RFC3339),
		"days_count": int(end.Sub(start).Hours()/24) + 1,
		"syllabi":    syllabiCtx,
		"todos":      todoRefs,
	})
	if err != nil {
		return nil, nil, err
	}

	raw, err := client.CompleteJSON(ctx, llm.StudyPlanSystemPrompt, string(userMessage))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrGeneration, err)
	}

	var data PlanData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		logger.Log.Errorw("study plan response is not valid JSON", "user_id", userID, "error", err)
		return nil, nil, fmt.Errorf("%w: unparseable study plan response", apperr.ErrGeneration)
	}
	if err := validate.Struct(&data); err != nil {
		logger.Log.Errorw("study plan response failed validation", "user_id", userID, "error", err)
		return nil, nil, fmt.Errorf("%w: study plan response missing required fields", apperr.ErrGeneration)
	}

	plan := models.StudyPlan{
		Title:     data.Title,
		StartDate: start,
		EndDate:   end,
		UserID:    userID,
		Content:   datatypes.JSON(raw),
	}
	if err := gdb.WithContext(ctx).Create(&plan).Error; err != nil {
		return nil, nil, err
	}
	return &plan, &data, nil
}
