package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ValidateEmail checks if the email format is valid
func ValidateEmail(email string) bool {
	re := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return re.MatchString(email)
}

// HashPassword generates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword compares a password with its hash
func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// AllowedUpload reports whether the filename has an accepted extension.
// Only PDF uploads are supported.
func AllowedUpload(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// StoredFilename builds a collision-free on-disk name for an upload,
// keeping the original base name for downloads.
func StoredFilename(userID uint, original string) string {
	base := filepath.Base(original)
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("%d_%s_%s", userID, uuid.New().String()[:8], base)
}
