package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board/internal/config"
	"github.com/yukikurage/kanban-board/internal/constants"
	"github.com/yukikurage/kanban-board/internal/database"
	"github.com/yukikurage/kanban-board/internal/handlers"
	"github.com/yukikurage/kanban-board/internal/repository"
	"github.com/yukikurage/kanban-board/internal/services"
	"github.com/yukikurage/kanban-board/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Open the store lazily through the process-wide manager
	database.Init(cfg)
	defer database.Close()

	messages := services.MessagesFor(cfg.Locale)
	workspace := services.NewWorkspace(func(ctx context.Context) (*repository.Store, error) {
		h, err := database.Open(ctx, constants.SchemaVersion)
		if err != nil {
			return nil, err
		}
		return repository.NewStore(h.DB), nil
	}, services.WithMessages(messages))

	if err := workspace.Load(context.Background()); err != nil {
		// The API stays up and reports the failure through /health
		log.Printf("Workspace failed to load: %v", err)
	}

	authService, err := services.NewAuthService(cfg.BoardPassword)
	if err != nil {
		log.Fatalf("Failed to initialize authentication: %v", err)
	}

	aiService := services.NewAIService(services.AIConfig{
		APIKey:   cfg.OpenAIAPIKey,
		Model:    cfg.OpenAIModel,
		BaseURL:  cfg.OpenAIBaseURL,
		Messages: messages,
	})

	// Initialize Gin router
	r := gin.Default()

	secret := cfg.SessionSecret
	if secret == "" {
		generated, err := utils.GenerateSecret(constants.GeneratedSecretLength)
		if err != nil {
			log.Fatalf("Failed to generate session secret: %v", err)
		}
		log.Println("SESSION_SECRET is not set, sessions will not survive a restart")
		secret = generated
	}

	// Setup session middleware
	var store sessions.Store
	switch cfg.SessionStore {
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			constants.RedisSessionPoolSize,
			"tcp",
			redisAddr,
			"",
			"",
			[]byte(secret),
		)
		if err != nil {
			log.Fatalf("Failed to create Redis store: %v", err)
		}
		store = rs
	default:
		store = cookie.NewStore([]byte(secret))
	}

	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAgeSeconds,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, handlers.Dependencies{
		Workspace: workspace,
		Auth:      authService,
		Assistant: aiService,
	})

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
