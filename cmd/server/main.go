package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"quiz-service/internal/auth"
	"quiz-service/internal/config"
	"quiz-service/internal/models"
	"quiz-service/internal/quiz"
	"quiz-service/internal/server"
	"quiz-service/pkg/cache"
	"quiz-service/pkg/database"
	"quiz-service/pkg/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(cfg.DatabaseConfig())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if err := database.Migrate(db, &models.User{}, &models.Quiz{}, &models.Completion{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional; without it every read goes to the database.
	var quizCache quiz.Cache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		defer redisCache.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			log.Printf("Warning: redis at %s unreachable: %v", cfg.Redis.Addr, err)
		}
		cancel()
		quizCache = redisCache
	}

	wsHub := websocket.NewHub(server.OriginChecker(cfg.Server.AllowedOrigins))
	go wsHub.Run(ctx)

	authRepo := auth.NewRepository(db)
	quizRepo := quiz.NewRepository(db)
	completionRepo := quiz.NewCompletionRepository(db)

	authService := auth.NewService(authRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	quizService := quiz.NewService(quizRepo, completionRepo, authRepo, quizCache, wsHub)

	handler := server.NewRouter(server.Deps{
		DB:             db,
		AuthService:    authService,
		AuthHandler:    auth.NewHandler(authService),
		QuizHandler:    quiz.NewHandler(quizService),
		Hub:            wsHub,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}
