package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"qwiklearn/config"
	"qwiklearn/db"
	"qwiklearn/handlers"
	"qwiklearn/llm"
	"qwiklearn/logger"
	"qwiklearn/middleware"
	"qwiklearn/routes"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.ConfigInstance = cfg

	if err := logger.Init(os.Getenv("APP_ENV")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := db.InitDatabaseConnection(); err != nil {
		logger.Log.Fatalw("failed to initialize database", "error", err)
	}
	defer db.CloseConnection()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Log.Fatalw("failed to create upload directory", "dir", cfg.UploadDir, "error", err)
	}

	handlers.LLM = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.MaxMultipartMemory = handlers.MaxUploadSize

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	middleware.ApplyMiddleware(router)

	router.SetFuncMap(handlers.TemplateFuncs())
	router.LoadHTMLGlob("templates/*.html")

	routes.SetupRoutes(router)

	logger.Log.Infow("server starting", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatalw("server stopped", "error", err)
	}
}
