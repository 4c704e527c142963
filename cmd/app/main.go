package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"tenant_rewards/internal/api"
	"tenant_rewards/internal/middleware"
	"tenant_rewards/internal/repository"
	"tenant_rewards/internal/service"
	"tenant_rewards/pkg/auth"
	"tenant_rewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	notifier := service.NewNotifier()

	userService := service.NewUserService(repo)
	feedbackService := service.NewFeedbackService(repo, repo, service.SurveyConfigPolicy{})
	surveyService := service.NewSurveyService(repo)
	redemptionService := service.NewRedemptionService(repo, notifier)

	jwtAuth := auth.NewJWTAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authz := middleware.NewAuthorization()

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, userService, jwtAuth)
	api.NewFeedbackRoutes(a, feedbackService, jwtAuth)
	api.NewSurveyRoutes(a, surveyService, jwtAuth, authz)
	api.NewRedemptionRoutes(a, redemptionService, jwtAuth, authz)
	api.NewWSRoutes(a, notifier, jwtAuth, authz)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
