package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	DatabaseURL  string // mysql DSN; empty means local sqlite
	SQLitePath   string
	Port         string
	SecretKey    string
	OpenAIAPIKey string
	OpenAIModel  string
	UploadDir    string
}

// ConfigInstance is the global configuration instance
var ConfigInstance *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SQLitePath:   os.Getenv("SQLITE_PATH"),
		Port:         os.Getenv("PORT"),
		SecretKey:    os.Getenv("SECRET_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  os.Getenv("OPENAI_MODEL"),
		UploadDir:    os.Getenv("UPLOAD_DIR"),
	}

	if config.Port == "" {
		config.Port = "8080"
	}
	if config.SQLitePath == "" {
		config.SQLitePath = "learning.db"
	}
	if config.OpenAIModel == "" {
		config.OpenAIModel = "gpt-4o-mini"
	}
	if config.UploadDir == "" {
		config.UploadDir = "uploads"
	}

	if config.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}

	if config.DatabaseURL == "" && os.Getenv("DB_HOST") != "" {
		config.DatabaseURL = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		)
	}

	return config, nil
}
