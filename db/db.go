package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"qwiklearn/config"
	"qwiklearn/models"
)

// DB is the global database connection
var DB *gorm.DB

// InitDatabaseConnection opens the database and runs migrations.
// A mysql DSN in DATABASE_URL selects mysql; otherwise a local sqlite
// file is used.
func InitDatabaseConnection() error {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	if config.ConfigInstance.DatabaseURL != "" {
		dialector = mysql.Open(config.ConfigInstance.DatabaseURL)
	} else {
		dialector = sqlite.Open(config.ConfigInstance.SQLitePath)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	return AutoMigrateAll(DB)
}

// AutoMigrateAll migrates every persistent entity
func AutoMigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Syllabus{},
		&models.Note{},
		&models.Assignment{},
		&models.Question{},
		&models.Todo{},
		&models.StudyPlan{},
	)
}

// CloseConnection closes the underlying connection pool
func CloseConnection() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
