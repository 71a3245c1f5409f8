package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"qwiklearn/auth"
	"qwiklearn/config"
	"qwiklearn/db"
	"qwiklearn/handlers"
	"qwiklearn/models"
	"qwiklearn/routes"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.ConfigInstance = &config.Config{
		SecretKey: "test-secret",
		UploadDir: os.TempDir(),
	}
	os.Exit(m.Run())
}

// fakeLLM plays back scripted responses; the last one repeats.
type fakeLLM struct {
	responses []string
	err       error
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", fmt.Errorf("no scripted response")
	}
	response := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return response, nil
}

func (f *fakeLLM) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return f.Complete(ctx, system, user)
}

func newRouter(t *testing.T, client *fakeLLM) *gin.Engine {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrateAll(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	db.DB = gdb
	handlers.LLM = client

	r := gin.New()
	r.SetFuncMap(handlers.TemplateFuncs())
	r.LoadHTMLGlob("../templates/*.html")
	routes.SetupRoutes(r)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(r *gin.Engine, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie && c.Value != "" {
			return c
		}
	}
	return nil
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) *http.Cookie {
	t.Helper()
	w := postForm(r, "/register", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"secret123"},
	}, nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("register: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}

	w = postForm(r, "/login", url.Values{
		"username": {username},
		"password": {"secret123"},
	}, nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/dashboard" {
		t.Fatalf("login: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}
	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("login set no session cookie")
	}
	return cookie
}

func TestRegisterLoginFlow(t *testing.T) {
	r := newRouter(t, &fakeLLM{})
	cookie := registerAndLogin(t, r, "alice")

	// Duplicate username bounces back to the form
	w := postForm(r, "/register", url.Values{
		"username": {"alice"},
		"email":    {"other@example.com"},
		"password": {"secret123"},
	}, nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/register" {
		t.Errorf("duplicate register: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}

	// Wrong password bounces back to login
	w = postForm(r, "/login", url.Values{
		"username": {"alice"},
		"password": {"wrongpass"},
	}, nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("bad login: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}

	// Session cookie opens the dashboard
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("dashboard with session: code=%d", w.Code)
	}

	// Browser request without a session redirects to login
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("dashboard without session: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}

	// JSON request without a session gets 401
	w = doJSON(r, http.MethodPost, "/todos", gin.H{"title": "x"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("todos without session: code=%d", w.Code)
	}
}

func TestTodoLifecycle(t *testing.T) {
	r := newRouter(t, &fakeLLM{})
	cookie := registerAndLogin(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/todos", gin.H{
		"title":    "Read chapter 3",
		"priority": 2,
		"due_date": "2025-04-01",
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("create todo: code=%d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil || created.ID == 0 {
		t.Fatalf("create todo response: %s", w.Body.String())
	}

	// Title is required
	w = doJSON(r, http.MethodPost, "/todos", gin.H{"priority": 1}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("create todo without title: code=%d", w.Code)
	}

	// Partial update only touches the provided fields
	path := fmt.Sprintf("/todos/%d", created.ID)
	w = doJSON(r, http.MethodPut, path, gin.H{"completed": true}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("update todo: code=%d body=%s", w.Code, w.Body.String())
	}
	var todo models.Todo
	if err := db.DB.First(&todo, created.ID).Error; err != nil {
		t.Fatalf("reload todo: %v", err)
	}
	if !todo.Completed || todo.Title != "Read chapter 3" || todo.Priority != 2 {
		t.Errorf("after update: %+v", todo)
	}
	if todo.DueDate == nil || !todo.DueDate.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due date = %v", todo.DueDate)
	}

	// Another user cannot touch it
	other := registerAndLogin(t, r, "bob")
	w = doJSON(r, http.MethodPut, path, gin.H{"title": "hijacked"}, other)
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-user update: code=%d", w.Code)
	}
	w = doJSON(r, http.MethodDelete, path, nil, other)
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-user delete: code=%d", w.Code)
	}

	w = doJSON(r, http.MethodDelete, path, nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("delete todo: code=%d", w.Code)
	}
	w = doJSON(r, http.MethodDelete, path, nil, cookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete missing todo: code=%d", w.Code)
	}
}

const notesResponse = `{
	"title": "Course Notes",
	"topics": [
		{"title": "Topic A", "subtopics": [
			{"title": "Sub 1", "content": "Content one.", "key_points": ["k1"], "examples": [], "summary": "s1"}
		]}
	]
}`

const assignmentResponse = `{
	"title": "Checkpoint",
	"description": "Short quiz",
	"topics": [
		{"title": "Topic A", "subtopics": [
			{"title": "Sub 1", "questions": [
				{"type": "multiple_choice", "text": "Pick A", "options": ["A", "B"], "correct_answer": "A", "points": 2},
				{"type": "fill_blank", "text": "Fill in", "correct_answer": "word"}
			]}
		]}
	]
}`

func TestSyllabusGenerateAndDeleteCascades(t *testing.T) {
	r := newRouter(t, &fakeLLM{responses: []string{notesResponse, assignmentResponse}})
	cookie := registerAndLogin(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/syllabi", gin.H{
		"title":   "Biology 101",
		"content": "Cells and genetics",
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("create syllabus: code=%d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil || created.ID == 0 {
		t.Fatalf("create syllabus response: %s", w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/generate_notes", gin.H{"syllabus_id": created.ID}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("generate notes: code=%d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodPost, "/generate_assignment", gin.H{"syllabus_id": created.ID}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("generate assignment: code=%d body=%s", w.Code, w.Body.String())
	}

	var notes, assignments, questions int64
	db.DB.Model(&models.Note{}).Where("syllabus_id = ?", created.ID).Count(&notes)
	db.DB.Model(&models.Assignment{}).Where("syllabus_id = ?", created.ID).Count(&assignments)
	db.DB.Model(&models.Question{}).Count(&questions)
	if notes != 1 || assignments != 1 || questions != 2 {
		t.Fatalf("after generation: notes=%d assignments=%d questions=%d", notes, assignments, questions)
	}

	// A different user cannot generate against this syllabus
	other := registerAndLogin(t, r, "bob")
	w = doJSON(r, http.MethodPost, "/generate_notes", gin.H{"syllabus_id": created.ID}, other)
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-user generate: code=%d", w.Code)
	}
	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/syllabi/%d", created.ID), nil, other)
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-user delete: code=%d", w.Code)
	}

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/syllabi/%d", created.ID), nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("delete syllabus: code=%d body=%s", w.Code, w.Body.String())
	}

	db.DB.Model(&models.Note{}).Where("syllabus_id = ?", created.ID).Count(&notes)
	db.DB.Model(&models.Assignment{}).Where("syllabus_id = ?", created.ID).Count(&assignments)
	db.DB.Model(&models.Question{}).Count(&questions)
	if notes != 0 || assignments != 0 || questions != 0 {
		t.Errorf("after delete: notes=%d assignments=%d questions=%d", notes, assignments, questions)
	}
}

func TestSubmitAssignment(t *testing.T) {
	r := newRouter(t, &fakeLLM{})
	cookie := registerAndLogin(t, r, "alice")

	assignment := models.Assignment{
		Title:      "Quiz",
		DueDate:    time.Now().Add(24 * time.Hour),
		UserID:     1,
		SyllabusID: 1,
	}
	if err := db.DB.Create(&assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	question := models.Question{
		AssignmentID:  assignment.ID,
		QuestionType:  models.QuestionMultipleChoice,
		QuestionText:  "Capital of France?",
		CorrectAnswer: "Paris",
		Points:        2,
	}
	if err := db.DB.Create(&question).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}

	path := fmt.Sprintf("/assignments/%d/submit", assignment.ID)
	key := fmt.Sprintf("q%d", question.ID)

	w := doJSON(r, http.MethodPost, path, gin.H{"answers": gin.H{key: "Paris"}}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: code=%d body=%s", w.Code, w.Body.String())
	}
	var result struct {
		TotalPoints  int `json:"total_points"`
		EarnedPoints int `json:"earned_points"`
		Feedback     []struct {
			QuestionID string `json:"question_id"`
			IsCorrect  bool   `json:"is_correct"`
		} `json:"feedback"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("submit response: %s", w.Body.String())
	}
	if result.TotalPoints != 2 || result.EarnedPoints != 2 {
		t.Errorf("first submit points = %d/%d", result.EarnedPoints, result.TotalPoints)
	}
	if len(result.Feedback) != 1 || !result.Feedback[0].IsCorrect || result.Feedback[0].QuestionID != key {
		t.Errorf("first submit feedback = %+v", result.Feedback)
	}

	// A resubmission replaces the stored outcome
	w = doJSON(r, http.MethodPost, path, gin.H{"answers": gin.H{key: "London"}}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("resubmit: code=%d body=%s", w.Code, w.Body.String())
	}
	var stored models.Assignment
	db.DB.First(&stored, assignment.ID)
	if stored.EarnedPoints != 0 || stored.TotalPoints != 2 || !stored.Completed {
		t.Errorf("after resubmit: earned=%d total=%d completed=%v", stored.EarnedPoints, stored.TotalPoints, stored.Completed)
	}

	// Another user's submission is rejected
	other := registerAndLogin(t, r, "bob")
	w = doJSON(r, http.MethodPost, path, gin.H{"answers": gin.H{key: "Paris"}}, other)
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-user submit: code=%d", w.Code)
	}
}

func TestChat(t *testing.T) {
	r := newRouter(t, &fakeLLM{responses: []string{"Photosynthesis converts light into chemical energy."}})
	cookie := registerAndLogin(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/chat", gin.H{"message": "What is photosynthesis?"}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("chat: code=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("chat response: %s", w.Body.String())
	}
	if !strings.Contains(resp.Response, "Photosynthesis") {
		t.Errorf("response = %q", resp.Response)
	}

	w = doJSON(r, http.MethodPost, "/chat", gin.H{}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("chat without message: code=%d", w.Code)
	}
}

func TestGenerateStudyPlanEndpoint(t *testing.T) {
	planResponse := `{"title": "Week Plan", "days": [{"date": "2025-03-01", "sessions": []}]}`
	r := newRouter(t, &fakeLLM{responses: []string{planResponse}})
	cookie := registerAndLogin(t, r, "alice")

	// No syllabus yet
	w := doJSON(r, http.MethodPost, "/generate-study-plan", gin.H{
		"start_date": "2025-03-01",
		"end_date":   "2025-03-07",
	}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("plan without syllabus: code=%d body=%s", w.Code, w.Body.String())
	}

	// Reversed range
	doJSON(r, http.MethodPost, "/syllabi", gin.H{"title": "Bio", "content": "cells"}, cookie)
	w = doJSON(r, http.MethodPost, "/generate-study-plan", gin.H{
		"start_date": "2025-03-07",
		"end_date":   "2025-03-01",
	}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("reversed range: code=%d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/generate-study-plan", gin.H{
		"start_date": "2025-03-01",
		"end_date":   "2025-03-07",
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("generate plan: code=%d body=%s", w.Code, w.Body.String())
	}

	var count int64
	db.DB.Model(&models.StudyPlan{}).Count(&count)
	if count != 1 {
		t.Errorf("plans persisted = %d, want 1", count)
	}
}
