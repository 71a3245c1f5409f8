package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"qwiklearn/auth"
	"qwiklearn/config"
	"qwiklearn/db"
	"qwiklearn/generator"
	"qwiklearn/llm"
	"qwiklearn/logger"
	"qwiklearn/models"
	"qwiklearn/pdfx"
	"qwiklearn/utils"
)

// MaxUploadSize caps syllabus PDF uploads at 16 MiB
const MaxUploadSize = 16 << 20

// ListSyllabiHandler renders the user's syllabi
func ListSyllabiHandler(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var syllabi []models.Syllabus
	if err := db.DB.Where("user_id = ?", userID).Find(&syllabi).Error; err != nil {
		logger.Log.Errorw("syllabi query failed", "user_id", userID, "error", err)
		jsonError(c, err)
		return
	}
	c.HTML(http.StatusOK, "syllabi.html", pageData(c, gin.H{"Syllabi": syllabi}))
}

// CreateSyllabusHandler accepts either a multipart PDF upload or a JSON
// body with title and content.
func CreateSyllabusHandler(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	file, err := c.FormFile("file")
	if err == nil {
		if !utils.AllowedUpload(file.Filename) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only PDF files are allowed."})
			return
		}
		if file.Size > MaxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File too large. Maximum size is 16MB."})
			return
		}

		storedName := utils.StoredFilename(userID, file.Filename)
		filePath := filepath.Join(config.ConfigInstance.UploadDir, storedName)
		if err := c.SaveUploadedFile(file, filePath); err != nil {
			logger.Log.Errorw("upload save failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file"})
			return
		}

		content := extractAndSummarize(c, filePath)

		title := c.PostForm("title")
		if title == "" {
			title = file.Filename
		}

		syllabus := models.Syllabus{
			Title:    title,
			Content:  content,
			FilePath: &filePath,
			UserID:   userID,
		}
		if err := db.DB.Create(&syllabus).Error; err != nil {
			logger.Log.Errorw("syllabus insert failed", "user_id", userID, "error", err)
			jsonError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Syllabus created successfully", "id": syllabus.ID})
		return
	}

	var req models.CreateSyllabusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	syllabus := models.Syllabus{Title: req.Title, Content: req.Content, UserID: userID}
	if err := db.DB.Create(&syllabus).Error; err != nil {
		logger.Log.Errorw("syllabus insert failed", "user_id", userID, "error", err)
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Syllabus created successfully", "id": syllabus.ID})
}

// extractAndSummarize pulls the text out of the uploaded PDF and asks the
// model to distill it into stored syllabus content. Failures degrade to a
// placeholder so the upload itself still succeeds.
func extractAndSummarize(c *gin.Context, filePath string) string {
	pdfText, err := pdfx.ExtractText(filePath)
	if err != nil {
		logger.Log.Warnw("pdf extraction failed", "path", filePath, "error", err)
		setFlash(c, "Error processing PDF: "+err.Error(), "error")
		return "Error extracting content from PDF"
	}

	content, err := LLM.Complete(c.Request.Context(), llm.PDFSummaryPrompt, pdfText)
	if err != nil {
		logger.Log.Warnw("pdf summarization failed", "path", filePath, "error", err)
		setFlash(c, "Error processing PDF: "+err.Error(), "error")
		return "Error extracting content from PDF"
	}
	return content
}

// fetchOwnedSyllabus loads a syllabus and checks ownership
func fetchOwnedSyllabus(c *gin.Context, id uint) (*models.Syllabus, error) {
	var syllabus models.Syllabus
	if err := db.DB.First(&syllabus, id).Error; err != nil {
		return nil, err
	}
	if syllabus.UserID != auth.CurrentUserID(c) {
		return nil, gorm.ErrRecordNotFound
	}
	return &syllabus, nil
}

// ViewSyllabusHandler renders a syllabus with its notes and assignments
func ViewSyllabusHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		htmlError(c, "/syllabi", "Invalid syllabus ID")
		return
	}

	var syllabus models.Syllabus
	if err := db.DB.First(&syllabus, id).Error; err != nil {
		htmlError(c, "/syllabi", "Syllabus not found")
		return
	}
	if syllabus.UserID != auth.CurrentUserID(c) {
		htmlError(c, "/syllabi", "Unauthorized access")
		return
	}

	var notes []models.Note
	if err := db.DB.Where("syllabus_id = ?", syllabus.ID).Order("sort_order").Find(&notes).Error; err != nil {
		logger.Log.Errorw("notes query failed", "syllabus_id", syllabus.ID, "error", err)
		jsonError(c, err)
		return
	}
	var assignments []models.Assignment
	if err := db.DB.Where("syllabus_id = ?", syllabus.ID).Find(&assignments).Error; err != nil {
		logger.Log.Errorw("assignments query failed", "syllabus_id", syllabus.ID, "error", err)
		jsonError(c, err)
		return
	}

	c.HTML(http.StatusOK, "view_syllabus.html", pageData(c, gin.H{
		"Syllabus":    syllabus,
		"Notes":       notes,
		"Assignments": assignments,
	}))
}

// DownloadSyllabusHandler serves the stored PDF
func DownloadSyllabusHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		htmlError(c, "/syllabi", "Invalid syllabus ID")
		return
	}

	var syllabus models.Syllabus
	if err := db.DB.First(&syllabus, id).Error; err != nil {
		htmlError(c, "/syllabi", "Syllabus not found")
		return
	}
	if syllabus.UserID != auth.CurrentUserID(c) {
		htmlError(c, "/syllabi", "Unauthorized access")
		return
	}

	if syllabus.FilePath == nil {
		htmlError(c, "/syllabi/"+strconv.Itoa(id), "File not found")
		return
	}
	if _, err := os.Stat(*syllabus.FilePath); err != nil {
		htmlError(c, "/syllabi/"+strconv.Itoa(id), "File not found")
		return
	}
	c.FileAttachment(*syllabus.FilePath, filepath.Base(*syllabus.FilePath))
}

// DeleteSyllabusHandler removes a syllabus with its notes, assignments
// and questions in one transaction, then deletes the stored file.
func DeleteSyllabusHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid syllabus ID"})
		return
	}

	var syllabus models.Syllabus
	if err := db.DB.First(&syllabus, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Syllabus not found"})
			return
		}
		jsonError(c, err)
		return
	}
	if syllabus.UserID != auth.CurrentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("syllabus_id = ?", syllabus.ID).Delete(&models.Note{}).Error; err != nil {
			return err
		}
		var assignments []models.Assignment
		if err := tx.Where("syllabus_id = ?", syllabus.ID).Find(&assignments).Error; err != nil {
			return err
		}
		for _, assignment := range assignments {
			if err := tx.Where("assignment_id = ?", assignment.ID).Delete(&models.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Assignment{}, assignment.ID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Syllabus{}, syllabus.ID).Error
	})
	if err != nil {
		logger.Log.Errorw("syllabus delete failed", "syllabus_id", syllabus.ID, "error", err)
		jsonError(c, err)
		return
	}

	if syllabus.FilePath != nil {
		if err := os.Remove(*syllabus.FilePath); err != nil && !os.IsNotExist(err) {
			logger.Log.Warnw("stored file removal failed", "path", *syllabus.FilePath, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Syllabus deleted successfully"})
}

// GenerateNotesHandler runs the notes generation pipeline for a syllabus
func GenerateNotesHandler(c *gin.Context) {
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

	data, err := generator.Notes(c.Request.Context(), db.DB, LLM, syllabus)
	if err != nil {
		logger.Log.Errorw("notes generation failed", "syllabus_id", syllabus.ID, "error", err)
		jsonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Notes generated successfully",
		"structure": data,
	})
}
