// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-quickstart/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	ClaimsKey   = "claims"
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
)

// RevocationChecker reports whether a token id was blacklisted at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Authenticate validates the Bearer token and stores its claims in the context.
// revoked may be nil when no blacklist is configured.
func Authenticate(tokens *auth.TokenManager, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || tokenString == authHeader || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization token missing"})
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid or expired token"})
			return
		}

		if revoked != nil && claims.ID != "" {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Could not verify token", "error": err.Error()})
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid or expired token"})
				return
			}
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)
		c.Next()
	}
}

// Claims returns the claims stored by Authenticate, or nil.
func Claims(c *gin.Context) *auth.JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.JWTClaims)
	return claims
}

// Authorize allows the request through only when the authenticated role is listed.
func Authorize(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(UserRoleKey)
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied: insufficient permissions"})
	}
}
