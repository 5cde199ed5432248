package middleware

import (
	"growth_assessment/internal/util"
	"growth_assessment/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SecretFunc returns the current signing secret; it may change on config reload.
type SecretFunc func() string

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("token")
}

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(secret SecretFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret())
		if err != nil {
			logger.Log.Debug("JWT rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// SameUserMiddleware only lets a token act on its own :userId.
func SameUserMiddleware(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if user.UserID != c.Param(param) {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
