package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"tosdetective-backend/config"
	"tosdetective-backend/gemini"
	"tosdetective-backend/handlers"
	"tosdetective-backend/repository"
	"tosdetective-backend/service"
	"tosdetective-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := initPostgres(cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	defer db.Close()

	fileStorage, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	docRepo := repository.NewDocumentRepository(db)
	fileRepo := repository.NewFileRepository(db)

	// Key store and guard are shared by every Gemini-backed feature. With no
	// key configured the guard starts in mocked mode and every feature serves
	// offline results until a key is submitted.
	keys := gemini.NewKeyStore(cfg.Gemini.APIKey)
	guard := gemini.NewGuard(keys, gemini.WithCoolDown(cfg.Gemini.GuardCoolDown))

	clientOpts := []gemini.ClientOption{gemini.WithKeyStore(keys)}
	if cfg.Gemini.BaseURL != "" {
		clientOpts = append(clientOpts, gemini.WithBaseURL(cfg.Gemini.BaseURL))
	}
	if len(cfg.Gemini.Models) > 0 {
		clientOpts = append(clientOpts, gemini.WithModels(cfg.Gemini.Models))
	}
	if cfg.Gemini.Timeout > 0 {
		clientOpts = append(clientOpts, gemini.WithHTTPClient(&http.Client{Timeout: cfg.Gemini.Timeout}))
	}
	geminiClient := gemini.NewClient(clientOpts...)

	genaiClient := initGenAI(cfg.Gemini.APIKey)
	if genaiClient != nil {
		defer genaiClient.Close()
	}

	analysisService := service.NewAnalysisService(
		service.WithGeminiClient(geminiClient),
		service.WithGuard(guard),
		service.WithGenAIClient(genaiClient),
		service.WithDocumentRepository(docRepo),
		service.WithHistoryLimit(cfg.Gemini.HistoryLimit),
	)

	comparisonService := service.NewComparisonService(
		service.CompareWithGeminiClient(geminiClient),
		service.CompareWithGuard(guard),
	)

	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	documentHandler := handlers.NewDocumentHandler(analysisService)
	compareHandler := handlers.NewCompareHandler(comparisonService)
	fileHandler := handlers.NewFileHandler(fileRepo, fileStorage)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		// Document analysis endpoints
		api.POST("/documents", documentHandler.AnalyzeDocument)
		api.GET("/documents/latest", documentHandler.GetLatestDocument)
		api.GET("/documents/:id", documentHandler.GetDocument)
		api.GET("/documents/:id/files", fileHandler.ListDocumentFiles)
		api.DELETE("/documents/:id", documentHandler.DeleteDocument)
		api.GET("/documents", documentHandler.ListDocuments)

		// Single-feature analysis endpoints
		api.POST("/analyze/simplify", analysisHandler.SimplifyText)
		api.POST("/analyze/risks", analysisHandler.IdentifyRisks)
		api.POST("/analyze/summary", analysisHandler.Summarize)
		api.POST("/analyze/predict", analysisHandler.PredictRisks)
		api.POST("/question", analysisHandler.AnswerQuestion)
		api.POST("/rewrite", analysisHandler.RewriteClause)

		// Comparison endpoints
		api.POST("/compare", compareHandler.Compare)
		api.POST("/compare-comprehensive", compareHandler.CompareComprehensive)
		api.POST("/compare-gemini", compareHandler.CompareGemini)

		// Key and guard status endpoints
		api.POST("/key", analysisHandler.SetAPIKey)
		api.GET("/status", analysisHandler.Status)

		// File endpoints
		api.POST("/files/upload", fileHandler.UploadFile)
		api.GET("/files/:id", fileHandler.GetFile)
		api.DELETE("/files/:id", fileHandler.DeleteFile)
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	log.Println("Postgres connection established")
	return pool, nil
}

// initGenAI builds the SDK client used for document Q&A. A missing key is
// not fatal: the guard serves mock data until one is submitted.
func initGenAI(apiKey string) *genai.Client {
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set, starting in mock mode")
		return nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		log.Printf("Warning: failed to initialize Gemini SDK client: %v", err)
		return nil
	}

	log.Println("Gemini SDK client initialized")
	return client
}
