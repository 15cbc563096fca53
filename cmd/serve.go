package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"practice-service/internal/adaptive"
	"practice-service/internal/config"
	mongodb "practice-service/internal/database/mongo"
	redisdb "practice-service/internal/database/redis"
	"practice-service/internal/event"
	"practice-service/internal/exercise"
	"practice-service/internal/handlers"
	"practice-service/internal/janitor"
	"practice-service/internal/llm"
	"practice-service/internal/repository"
	"practice-service/internal/service"
	"practice-service/pkg/discovery"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.DefaultConfig(cfg.MongoURI, cfg.MongoDatabase))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer mongodb.Disconnect(mongoClient)

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Printf("Warning: Failed to ensure indexes: %v", err)
	}

	var limiter service.RateLimiter
	if redisClient := redisdb.NewClient(ctx, redisdb.Config{Address: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}); redisClient != nil {
		defer redisClient.Close()
		limiter = repository.NewRateLimitRepository(redisClient)
	}

	var publisher event.Publisher = event.Noop{}
	if cfg.RabbitMQURI != "" {
		p, err := event.NewEventPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange)
		if err != nil {
			log.Printf("Warning: Failed to connect to RabbitMQ: %v", err)
		} else {
			publisher = p
			log.Println("RabbitMQ connected successfully")
		}
	} else {
		log.Println("RabbitMQ not configured, events will not be published")
	}
	defer publisher.Close()

	provider, err := llm.NewProvider(ctx, llm.Config{
		Provider:  cfg.LLMProvider,
		OpenAI:    llm.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Model: cfg.OpenAIModel},
		Anthropic: llm.AnthropicConfig{APIKey: cfg.AnthropicAPIKey, Model: cfg.AnthropicModel},
		Gemini:    llm.GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel},
		Timeout:   cfg.LLMTimeout,
	})
	if err != nil {
		return fmt.Errorf("init llm provider: %w", err)
	}
	log.Printf("LLM provider ready: %s", provider.ModelID())

	userRepo := repository.NewUserRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	practiceRepo := repository.NewPracticeRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)
	authService := service.NewAuthService(userRepo, progressRepo, invitationRepo, tokens, publisher, cfg.InvitationRequired)
	practiceService := service.NewPracticeService(practiceRepo, progressRepo, userRepo, exercise.NewService(provider), adaptive.NewManager(nil), publisher)
	feedbackService := service.NewFeedbackService(feedbackRepo, limiter, publisher, cfg.FeedbackRateLimit, cfg.FeedbackRateWindow)

	router := handlers.SetupRouter(handlers.RouterConfig{
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		Tokens:         tokens,
	}, handlers.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Practice: handlers.NewPracticeHandler(practiceService),
		Progress: handlers.NewProgressHandler(practiceService),
		Feedback: handlers.NewFeedbackHandler(feedbackService),
	})

	cleaner := janitor.New(practiceService, cfg.StalePracticeAge)
	if err := cleaner.Start(); err != nil {
		log.Printf("Warning: Failed to start janitor: %v", err)
	}
	defer cleaner.Stop()

	if cfg.ConsulAddress != "" {
		registry, err := discovery.NewServiceRegistry(discovery.Config{
			ConsulAddress:  cfg.ConsulAddress,
			ServiceID:      cfg.ServiceID,
			ServiceName:    cfg.ServiceName,
			ServiceAddress: cfg.ServiceAddress,
			Port:           cfg.Port,
			Tags:           []string{"practice", "llm"},
		})
		if err != nil {
			log.Printf("Warning: %v", err)
		} else if err := registry.Register(); err != nil {
			log.Printf("Warning: %v", err)
		} else {
			defer func() {
				if err := registry.Deregister(); err != nil {
					log.Printf("Error deregistering from Consul: %v", err)
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting practice service on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
