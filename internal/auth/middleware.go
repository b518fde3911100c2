package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "mediadropUser"

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateAccessToken(token string) (UserClaims, error)
}

// ContextUser represents the authenticated principal stored in the request context.
type ContextUser struct {
	ID    uuid.UUID
	Email string
}

// AuthMiddleware rejects requests without a valid bearer token before any handler runs.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}

		token := extractBearerToken(authHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}

		claims, err := validator.ValidateAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}

		c.Set(string(userContextKey), ContextUser{ID: claims.UserID, Email: claims.Email})
		c.Next()
	}
}

// CurrentUser extracts the authenticated user from the context.
func CurrentUser(c *gin.Context) (ContextUser, bool) {
	value, exists := c.Get(string(userContextKey))
	if !exists {
		return ContextUser{}, false
	}
	user, ok := value.(ContextUser)
	return user, ok && user.ID != uuid.Nil
}

// RequireUser is CurrentUser for handlers that must not run anonymously.
func RequireUser(c *gin.Context) (ContextUser, bool) {
	return CurrentUser(c)
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
