package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ZinoM21/any-cv-api/internal/delivery/http/response"
	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/auth"

	"github.com/gin-gonic/gin"
)

// RequireAuth rejects requests without a valid access token. Claims are put
// both into the gin context and the request context, so usecases can read
// them without knowing about gin.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, tokens)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Authorization required", nil)
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth populates identity when a valid token is present and stays
// silent otherwise. Used on routes that serve both guests and owners.
func OptionalAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, tokens); ok {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, tokens *auth.TokenManager) (*auth.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return nil, false
	}

	claims, err := tokens.Parse(tokenString)
	if err != nil || claims.TokenType != auth.TokenTypeAccess {
		return nil, false
	}
	return claims, true
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(string(domain.KeyUserID), claims.UserID)
	c.Set(string(domain.KeyUserEmail), claims.Email)
	c.Set(string(domain.KeyUsername), claims.Username)

	ctx := c.Request.Context()
	ctx = context.WithValue(ctx, domain.KeyUserID, claims.UserID)
	ctx = context.WithValue(ctx, domain.KeyUserEmail, claims.Email)
	ctx = context.WithValue(ctx, domain.KeyUsername, claims.Username)
	c.Request = c.Request.WithContext(ctx)
}
