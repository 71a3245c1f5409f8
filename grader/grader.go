// Package grader evaluates submitted assignment answers against stored
// questions and persists the outcome on the assignment row.
package grader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"qwiklearn/llm"
	"qwiklearn/logger"
	"qwiklearn/models"
)

// CorrectThreshold is the model score at or above which a free-text
// answer counts as correct.
const CorrectThreshold = 0.7

const evalErrorFeedback = "Error evaluating answer. Please try again."

// FeedbackEntry is the per-question grading outcome. QuestionID keeps the
// submitted "q<id>" form.
type FeedbackEntry struct {
	QuestionID string `json:"question_id"`
	IsCorrect  bool   `json:"is_correct"`
	Feedback   string `json:"feedback"`
}

// Result aggregates a graded submission
type Result struct {
	TotalPoints  int             `json:"total_points"`
	EarnedPoints int             `json:"earned_points"`
	Feedback     []FeedbackEntry `json:"feedback"`
}

// Grade evaluates the answer map against the assignment's questions and
// persists answers, feedback, completion and point totals. Keys are
// "q<question_id>"; a key matching no question of this assignment is
// skipped. Calling Grade again overwrites the previous submission.
func Grade(ctx context.Context, gdb *gorm.DB, client llm.Client, assignment *models.Assignment, answers map[string]any) (*Result, error) {
	result := &Result{Feedback: []FeedbackEntry{}}
	stored := make(map[string]any, len(answers))
	for k, v := range answers {
		stored[k] = v
	}

	// Deterministic grading and feedback order
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimPrefix(keys[i], "q"))
		b, _ := strconv.Atoi(strings.TrimPrefix(keys[j], "q"))
		return a < b
	})

	for _, key := range keys {
		answer := answers[key]
		questionID, err := strconv.Atoi(strings.TrimPrefix(key, "q"))
		if err != nil {
			continue
		}

		var question models.Question
		err = gdb.WithContext(ctx).
			Where("id = ? AND assignment_id = ?", questionID, assignment.ID).
			First(&question).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			continue
		}

		isCorrect, feedback := evaluate(ctx, client, &question, answer, stored, key)

		if isCorrect {
			result.EarnedPoints += question.Points
		}
		result.TotalPoints += question.Points
		result.Feedback = append(result.Feedback, FeedbackEntry{
			QuestionID: key,
			IsCorrect:  isCorrect,
			Feedback:   feedback,
		})
	}

	answersJSON, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	feedbackJSON, err := json.Marshal(result.Feedback)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"student_answers": datatypes.JSON(answersJSON),
		"ai_feedback":     datatypes.JSON(feedbackJSON),
		"completed":       true,
		"total_points":    result.TotalPoints,
		"earned_points":   result.EarnedPoints,
	}
	if err := gdb.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ?", assignment.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	assignment.StudentAnswers = datatypes.JSON(answersJSON)
	assignment.AIFeedback = datatypes.JSON(feedbackJSON)
	assignment.Completed = true
	assignment.TotalPoints = result.TotalPoints
	assignment.EarnedPoints = result.EarnedPoints
	return result, nil
}

func evaluate(ctx context.Context, client llm.Client, question *models.Question, answer any, stored map[string]any, key string) (bool, string) {
	switch question.QuestionType {
	case models.QuestionMultipleChoice:
		return strings.TrimSpace(answerText(answer)) == strings.TrimSpace(question.CorrectAnswer), ""

	case models.QuestionFillBlank:
		submitted := strings.ToLower(strings.TrimSpace(answerText(answer)))
		expected := strings.ToLower(strings.TrimSpace(question.CorrectAnswer))
		return submitted == expected, ""

	case models.QuestionOrdering, models.QuestionDragDrop:
		submitted, err := answerSequence(answer)
		if err != nil {
			logger.Log.Debugw("unparseable sequence answer", "question_id", question.ID, "error", err)
			return false, ""
		}
		// Canonical JSON form goes back into the stored answer map
		if encoded, err := json.Marshal(submitted); err == nil {
			stored[key] = string(encoded)
		}
		var expected []string
		if err := json.Unmarshal([]byte(question.CorrectAnswer), &expected); err != nil {
			return false, ""
		}
		return sequencesEqual(submitted, expected), ""

	case models.QuestionShortAnswer, models.QuestionLongAnswer:
		return scoreFreeText(ctx, client, question, answerText(answer))

	default:
		return false, ""
	}
}

type evalResponse struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

func scoreFreeText(ctx context.Context, client llm.Client, question *models.Question, answer string) (bool, string) {
	system := fmt.Sprintf(llm.AnswerEvalSystemPrompt, question.QuestionType)
	user := fmt.Sprintf("Question: %s\nCorrect Answer: %s\nStudent Answer: %s",
		question.QuestionText, question.CorrectAnswer, answer)

	raw, err := client.CompleteJSON(ctx, system, user)
	if err != nil {
		logger.Log.Warnw("answer evaluation call failed", "question_id", question.ID, "error", err)
		return false, evalErrorFeedback
	}

	var eval evalResponse
	if err := json.Unmarshal([]byte(raw), &eval); err != nil {
		logger.Log.Warnw("answer evaluation response unparseable", "question_id", question.ID, "error", err)
		return false, evalErrorFeedback
	}
	return eval.Score >= CorrectThreshold, eval.Feedback
}

// answerText renders a submitted scalar answer as a comparable string
func answerText(answer any) string {
	if s, ok := answer.(string); ok {
		return s
	}
	return fmt.Sprint(answer)
}

// answerSequence decodes a submitted ordering/drag_drop answer, which
// arrives either as a list or as a JSON-encoded string.
func answerSequence(answer any) ([]string, error) {
	switch v := answer.(type) {
	case string:
		var seq []string
		if err := json.Unmarshal([]byte(v), &seq); err != nil {
			return nil, err
		}
		return seq, nil
	case []any:
		seq := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("sequence item %v is not a string", item)
			}
			seq = append(seq, s)
		}
		return seq, nil
	case []string:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported answer type %T", answer)
	}
}

func sequencesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
