package main

import (
	"context"
	"log"

	"meal-genie/internal/auth"
	"meal-genie/internal/chat"
	"meal-genie/internal/config"
	"meal-genie/internal/database"
	"meal-genie/internal/llm"
	"meal-genie/internal/metrics"
	"meal-genie/internal/planner"
	"meal-genie/internal/push"
	"meal-genie/internal/server"
	"meal-genie/internal/user"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	var textGen llm.TextGenerator
	switch cfg.LLMProvider {
	case "gemini":
		geminiClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		if closer, ok := geminiClient.(llm.Closer); ok {
			defer closer.Close()
		}
		textGen = geminiClient
	default:
		textGen = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	}

	metricsStore := metrics.NewStore(db.SQL)
	if removed, err := metricsStore.Cleanup(ctx, 90); err != nil {
		log.Printf("Failed to clean up old execution metrics: %v", err)
	} else if removed > 0 {
		log.Printf("Removed %d execution metrics older than 90 days", removed)
	}

	verifier := auth.NewVerifier(cfg.JWTSecret)
	users := user.NewRepository(db.SQL)
	plans := planner.NewPlanRepository(db.SQL)
	chats := chat.NewRepository(db.SQL)
	chatSvc := chat.NewService(textGen, metricsStore)

	registry := push.NewRegistry()
	cache := planner.NewPlanCache()
	limiter := planner.NewCallLimiter(planner.LimiterInterval, planner.LimiterLimit)
	generator := planner.NewGenerator(plans, cache, limiter, textGen, registry, metricsStore)

	srv := server.NewServer(cfg.Port, verifier, users, plans, generator, chats, chatSvc, registry, metricsStore)

	log.Printf("Starting meal-genie on port %s", cfg.Port)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
