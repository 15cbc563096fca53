package middleware

import (
	"strings"

	"practice-service/internal/service"
	"practice-service/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "userID"
	EmailKey  = "email"
)

type TokenValidator interface {
	Validate(token string) (*service.Claims, error)
}

// Auth requires a valid bearer token and stores the caller's id in the
// context under UserIDKey.
func Auth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			utils.UnauthorizedResponse(c, "Token is required for this endpoint")
			c.Abort()
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			utils.UnauthorizedResponse(c, "Session expired, please log in again")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated caller set by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
