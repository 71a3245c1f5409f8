package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"qwiklearn/apperr"
	"qwiklearn/llm"
	"qwiklearn/logger"
)

// LLM is the completion client used by the chat, generation and grading
// handlers. Set in main; tests replace it with a fake.
var LLM llm.Client

const flashCookie = "flash"

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// MarkdownHTML renders note content as HTML for the templates
func MarkdownHTML(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(source), &buf); err != nil {
		logger.Log.Warnw("markdown rendering failed", "error", err)
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}

// TemplateFuncs are registered on the gin engine before template loading
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": MarkdownHTML,
		"date":     func(v any) string { return formatTime(v, "Jan 2, 2006") },
		"datetime": func(v any) string { return formatTime(v, "Jan 2, 2006 15:04") },
	}
}

// formatTime handles both time.Time and nullable *time.Time fields
func formatTime(v any, layout string) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format(layout)
	case *time.Time:
		if t != nil {
			return t.Format(layout)
		}
	}
	return ""
}

// setFlash stores a one-shot message shown on the next rendered page
func setFlash(c *gin.Context, message, category string) {
	c.SetCookie(flashCookie, category+"|"+message, 60, "/", "", false, true)
}

// popFlash reads and clears the pending flash message
func popFlash(c *gin.Context) (message, category string) {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return "", ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 {
		return value, "info"
	}
	return parts[1], parts[0]
}

// pageData merges per-page fields with the flash message for the layout
func pageData(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	message, category := popFlash(c)
	data["FlashMessage"] = message
	data["FlashCategory"] = category
	return data
}

// jsonError converts an error from the service layer into the JSON error
// envelope with a status mapped from the error taxonomy.
func jsonError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrGeneration):
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// htmlError flashes the message and redirects, the HTML-view counterpart
// of jsonError.
func htmlError(c *gin.Context, redirect, message string) {
	setFlash(c, message, "error")
	c.Redirect(http.StatusFound, redirect)
}

// parseISO accepts the date formats the views submit
func parseISO(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
