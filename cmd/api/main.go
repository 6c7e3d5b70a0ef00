package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZinoM21/any-cv-api/config"
	_ "github.com/ZinoM21/any-cv-api/docs" // Important for Swagger
	v1 "github.com/ZinoM21/any-cv-api/internal/delivery/http/v1"
	"github.com/ZinoM21/any-cv-api/internal/repository/linkedin"
	"github.com/ZinoM21/any-cv-api/internal/repository/mongodb"
	"github.com/ZinoM21/any-cv-api/internal/repository/storage"
	"github.com/ZinoM21/any-cv-api/internal/usecase"
	"github.com/ZinoM21/any-cv-api/pkg/auth"
	"github.com/ZinoM21/any-cv-api/pkg/database"
	"github.com/ZinoM21/any-cv-api/pkg/email"
	"github.com/ZinoM21/any-cv-api/pkg/logger"
	"github.com/ZinoM21/any-cv-api/pkg/redis"
	"github.com/ZinoM21/any-cv-api/pkg/security"
	"github.com/ZinoM21/any-cv-api/pkg/turnstile"
	"github.com/ZinoM21/any-cv-api/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// @title           AnyCV API
// @version         1.0
// @description     CV builder backend ingesting public professional profiles.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting any-cv backend", "port", cfg.Port)
	securityLogger := security.InitSecurityLogger("any-cv-api", cfg.Environment)

	// 3. Setup Database
	mongoClient, db, err := database.NewMongoConnection(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 15*time.Second)
	if err := mongodb.EnsureProfileIndexes(indexCtx, db); err != nil {
		logger.Log.Error("Failed to create profile indexes", "error", err)
		os.Exit(1)
	}
	if err := mongodb.EnsureUserIndexes(indexCtx, db); err != nil {
		logger.Log.Error("Failed to create user indexes", "error", err)
		os.Exit(1)
	}
	cancelIndexes()

	// 4. Setup Redis (optional, rate limiting falls back to in-memory)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting uses in-memory fallback", "error", err)
	}

	// 5. Setup Object Storage
	fileStorage, err := storage.NewS3Storage(context.Background(), cfg)
	if err != nil {
		logger.Log.Error("Failed to set up object storage", "error", err)
		os.Exit(1)
	}

	// 6. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - verification and reset emails will be skipped")
	}

	// 7. Setup Repositories
	profileRepo := mongodb.NewProfileRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	profileSource := linkedin.NewClient(cfg)
	normalizer := linkedin.NewNormalizer()

	// 8. Setup Auth, Turnstile and Validation
	tokens := auth.NewTokenManager(
		cfg.JWTSecret,
		time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLMinutes)*time.Minute,
	)
	turnstileVerifier := turnstile.NewVerifier(cfg)

	validate := validator.New()
	validation.RegisterValidators(validate)

	// 9. Setup UseCases
	profileUC := usecase.NewProfileUsecase(profileRepo, profileSource, normalizer, turnstileVerifier, validate)
	authUC := usecase.NewAuthUsecase(userRepo, tokens, emailService, validate,
		time.Duration(cfg.EmailTokenTTLHours)*time.Hour)
	userUC := usecase.NewUserUsecase(userRepo, profileRepo, validate)
	fileUC := usecase.NewFileUsecase(fileStorage, profileRepo, validate, cfg.MaxUploadSizeBytes, cfg.AvatarMaxDimensionPx)
	healthUC := usecase.NewHealthUsecase(mongoClient)

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:    authUC,
		UserUC:    userUC,
		ProfileUC: profileUC,
		FileUC:    fileUC,
		HealthUC:  healthUC,
		Tokens:    tokens,
		Config:    cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		logger.Log.Error("Mongo disconnect failed", "error", err)
	}
	if err := redis.Close(); err != nil {
		logger.Log.Error("Redis close failed", "error", err)
	}
	_ = securityLogger.Sync()

	logger.Log.Info("Server exiting")
}
