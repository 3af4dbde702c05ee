package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"github.com/datalens-ai/conversational-analytics-be/internal/core/llm"
	"github.com/datalens-ai/conversational-analytics-be/internal/core/nlq"
	"github.com/datalens-ai/conversational-analytics-be/internal/core/record"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/handlers"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/repositories"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/services"
	"github.com/datalens-ai/conversational-analytics-be/internal/shared/config"
	"github.com/datalens-ai/conversational-analytics-be/internal/shared/database"
	"github.com/datalens-ai/conversational-analytics-be/internal/shared/utils"
)

// @title Conversational Analytics API
// @version 1.0
// @description Dashboard aggregation and LLM-driven conversational analytics over a transactions dataset
// @host localhost:8080
// @BasePath /
func main() {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	utils.InitLogger()
	log.Printf("🚀 Starting api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	if err := repositories.EnsureHistoryTables(db.GORM); err != nil {
		log.Fatalf("❌ Failed to ensure history tables: %v", err)
	}

	// Init repositories
	historyRepo := repositories.NewHistoryRepo(db.GORM)
	dashboardRepo := repositories.NewDashboardRepo(db.GORM)
	queryRepo := repositories.NewQueryRepo(db.DB)

	// Init LLM service (multi-provider support)
	provider, err := llm.NewProvider(&llm.ProviderConfig{
		Type:        llm.ProviderType(cfg.LLMProvider),
		OpenAIKey:   cfg.OpenAIKey,
		GroqKey:     cfg.GroqKey,
		DeepSeekKey: cfg.DeepSeekKey,
		Model:       cfg.LLMModel,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize LLM provider: %v", err)
	}
	llmService := llm.NewService(provider)
	log.Printf("🤖 Using LLM provider: %s", llmService.GetProviderName())

	// Best-effort history persistence runs off the request path
	recorder := record.NewRecorder(64)
	defer recorder.Close()

	// Init services
	runner := nlq.NewChain(llmService, queryRepo)
	dashboardService := services.NewDashboardService(dashboardRepo, cfg.ReferenceDate)
	analyzeService := services.NewAnalyzeService(llmService, runner, historyRepo, recorder)
	graphService := services.NewGraphService(llmService, queryRepo, historyRepo, recorder)

	// Init handlers
	healthHandler := handlers.NewHealthHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	chatHandler := handlers.NewChatHandler(analyzeService, historyRepo)
	graphHandler := handlers.NewGraphHandler(graphService, historyRepo)

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Conversational Analytics API",
	})

	// Middleware
	app.Use(cors.New())

	// Health check
	app.Get("/api/health", healthHandler.HealthCheck)

	// Dashboard routes
	app.Get("/api/data", dashboardHandler.GetDashboardData)

	// Chat routes
	app.Post("/api/text/analyze", chatHandler.AnalyzeText)
	app.Get("/api/chat/history", chatHandler.GetChatHistory)

	// Graph routes
	app.Post("/api/graphs/generate", graphHandler.GenerateGraphs)
	app.Get("/api/graphs/history", graphHandler.GetGraphHistory)

	// Start server
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
