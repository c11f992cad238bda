package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/CalMoney11/Ingredient-Analyzer/internal/backend"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/config"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/history"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/orchestrator"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/platform/gemini"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/prefs"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/retry"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/web"
)

func main() {
	ctx := context.Background()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	var analyzer orchestrator.Analyzer
	var checker web.HealthChecker
	if cfg.BackendURL != "" {
		client := backend.NewClient(cfg.BackendURL)
		analyzer = client
		checker = client

		// Best-effort reachability probe at startup; failures are logged,
		// never fatal.
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := client.Health(probeCtx); err != nil {
			log.Printf("analysis service unreachable at startup: %v", err)
		}
		cancel()
	} else {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("error creating gemini client: %v", err)
		}
		defer client.Close()
		analyzer = client
	}

	prefsStore, err := prefs.NewStore(cfg.PrefsPath)
	if err != nil {
		log.Fatalf("error creating preferences store: %v", err)
	}

	var store history.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := history.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("error creating history store: %v", err)
		}
		store = pgStore
	}

	policy := retry.Policy{MaxAttempts: cfg.MaxAttempts, BaseDelay: cfg.BaseDelay, Jitter: true}
	handler := web.NewHandler(analyzer, checker, prefsStore, store, policy)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://localhost:8081"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.Register(r)

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
