package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	claimsKey   = "auth_claims"
	identityKey = "auth_identity"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// OptionalAuth resolves the caller from the Authorization header when one is
// present. Both "Bearer <token>" and "Token <token>" are accepted. Requests
// without a header continue anonymously; a header with a bad token is
// rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Set(identityKey, claims.Identity())
		c.Next()
	}
}

// RequireAuth rejects anonymous callers. It must run after OptionalAuth.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			return
		}
		c.Next()
	}
}

// GetIdentity returns the authenticated caller, or nil for anonymous requests.
func GetIdentity(c *gin.Context) *types.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(*types.Identity); ok {
			return identity
		}
	}
	return nil
}

// GetClaims returns the validated token claims, or nil for anonymous requests.
func GetClaims(c *gin.Context) *types.TokenClaims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*types.TokenClaims); ok {
			return claims
		}
	}
	return nil
}
