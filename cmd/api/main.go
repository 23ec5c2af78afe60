package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Muntazir86/short-it/internal/config"
	"github.com/Muntazir86/short-it/internal/geoip"
	"github.com/Muntazir86/short-it/internal/handler"
	"github.com/Muntazir86/short-it/internal/middleware"
	"github.com/Muntazir86/short-it/internal/repository"
	"github.com/Muntazir86/short-it/internal/service"
	"github.com/Muntazir86/short-it/internal/token"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Migrations applied")

	redis, err := repository.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	userRepo := repository.NewUserRepository(db)
	urlRepo := repository.NewURLRepository(db)
	clickRepo := repository.NewClickRepository(db)
	cacheRepo := repository.NewCacheRepository(redis)

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)

	authService := service.NewAuthService(userRepo, tokens)
	urlService := service.NewURLService(urlRepo, cacheRepo, cfg.Shortener, logger)
	analyticsService := service.NewAnalyticsService(urlRepo, clickRepo)

	clickProcessor := service.NewClickProcessor(clickRepo, urlRepo, geoip.NewStaticLocator(), logger)
	clickProcessor.Start()
	defer clickProcessor.Stop()

	authenticator := middleware.NewAuthenticator(tokens, authService)
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRedisCounterStore(redis.Client),
		cfg.RateLimit,
		logger,
	)

	router := handler.NewRouter(
		authService,
		urlService,
		analyticsService,
		clickProcessor,
		authenticator,
		rateLimiter,
		cfg.App.BaseURL,
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
