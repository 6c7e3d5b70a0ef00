package v1

import (
	"net/http"
	"time"

	"github.com/ZinoM21/any-cv-api/config"
	"github.com/ZinoM21/any-cv-api/internal/delivery/http/middleware"
	"github.com/ZinoM21/any-cv-api/internal/delivery/http/response"
	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/internal/usecase"
	"github.com/ZinoM21/any-cv-api/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC    domain.AuthUsecase
	UserUC    domain.UserUsecase
	ProfileUC domain.ProfileUsecase
	FileUC    domain.FileUsecase
	HealthUC  usecase.HealthUsecase
	Tokens    *auth.TokenManager
	Config    *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second
	r.Use(middleware.RateLimitMiddleware(
		middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	loginLimiter := middleware.RateLimitMiddleware(
		middleware.LoginRateLimitConfig(deps.Config.RateLimitLoginThreshold, window))
	ingestLimiter := middleware.RateLimitMiddleware(
		middleware.IngestRateLimitConfig(deps.Config.RateLimitCreatePerHour))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", deps.HealthUC.Check(c.Request.Context()))
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	NewAuthHandler(v1, loginLimiter, deps.AuthUC)
	NewPublishedHandler(v1, deps.ProfileUC, deps.FileUC)

	// Routes serving both guests and owners
	optional := v1.Group("")
	optional.Use(middleware.OptionalAuth(deps.Tokens))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.RequireAuth(deps.Tokens))
	{
		NewProfileHandler(optional, protected, ingestLimiter, deps.ProfileUC)
		NewUserHandler(protected, deps.UserUC, deps.ProfileUC)
		NewFileHandler(protected, deps.FileUC, deps.Config.MaxUploadSizeBytes)
	}

	return r
}
