package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

// Context keys set by the auth middlewares
const (
	UserIDKey = "user_id"
	ClaimsKey = "claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// extractToken accepts "Token <t>" and "Bearer <t>".
func extractToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	switch parts[0] {
	case "Token", "Bearer":
		return parts[1], true
	}
	return "", false
}

// authenticate validates the Authorization header, if any. It returns false
// after aborting the request when the header is present but unusable.
func authenticate(c *gin.Context, validator TokenValidator) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return true
	}

	token, ok := extractToken(authHeader)
	if !ok {
		abortWithDetail(c, http.StatusUnauthorized, "invalid authorization header format")
		return false
	}

	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		abortWithDetail(c, http.StatusUnauthorized, "invalid token")
		return false
	}

	// Store user info in context
	c.Set(UserIDKey, claims.UserID)
	c.Set(ClaimsKey, claims)
	return true
}

// AuthMiddleware creates a middleware that requires a valid token
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, validator) {
			return
		}
		if _, ok := UserID(c); !ok {
			abortWithDetail(c, http.StatusUnauthorized, "authentication credentials were not provided")
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the user when a token is sent and lets anonymous
// requests through. An invalid token is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, validator) {
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id.
func UserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// Claims returns the token claims of the authenticated request.
func Claims(c *gin.Context) (*types.TokenClaims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*types.TokenClaims)
	return claims, ok
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
