package api

import (
	"errors"
	"net/http"
	"time"

	"tenant_rewards/internal/model"
	"tenant_rewards/internal/service"
	"tenant_rewards/pkg/auth"
	"tenant_rewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type userRoutes struct {
	us service.UserServiceI
	a  *auth.JWTAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.JWTAuth) {
	r := &userRoutes{us: us, a: a}
	h := handler.Group("/users")
	h.Use(a.AuthMiddleware())
	{
		h.POST("", r.RegisterUser)
		h.GET("/me", r.GetCurrentUser)
	}
}

type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type UserResponse struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Points           int       `json:"points"`
	RegistrationDate time.Time `json:"registration_date"`
}

func (r *userRoutes) RegisterUser(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		log.Error("user id not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	now := time.Now().UTC()
	u := &model.User{
		UserID:           userID,
		Username:         req.Username,
		Email:            req.Email,
		Points:           0,
		RegistrationDate: now,
		AuthDate:         now,
	}

	err := r.us.RegisterUser(c.Request.Context(), u)
	if err != nil {
		log.Error("failed to register user", zap.Error(err))
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "user already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		UserID:           u.UserID,
		Username:         u.Username,
		Email:            u.Email,
		Points:           u.Points,
		RegistrationDate: u.RegistrationDate,
	})
}

func (r *userRoutes) GetCurrentUser(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		log.Error("user id not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user, err := r.us.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get user", zap.Error(err))
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		UserID:           user.UserID,
		Username:         user.Username,
		Email:            user.Email,
		Points:           user.Points,
		RegistrationDate: user.RegistrationDate,
	})
}
