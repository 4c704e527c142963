package middleware

import (
	"net/http"

	"tenant_rewards/pkg/auth"
	"tenant_rewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type Authorization struct{}

func NewAuthorization() *Authorization {
	return &Authorization{}
}

func (a *Authorization) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		role, exists := c.Get(auth.ContextRole)
		if !exists {
			log.Error("role not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if role != auth.RoleAdmin {
			userID, _ := auth.UserIDFromContext(c)
			log.Info("unauthorized access attempt to admin endpoint",
				zap.String("user_id", userID.String()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		c.Set("is_admin", true)
		c.Next()
	}
}
