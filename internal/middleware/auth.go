package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/pavangundu/ai-helper/pkg/utils"
)

const (
	// ContextProfileID holds the authenticated profile id.
	ContextProfileID = "userId"
	// ContextClaims holds the *utils.Claims of the request's token.
	ContextClaims = "claims"
)

// TokenBlacklist reports revoked token ids. database.RedisStore implements it.
type TokenBlacklist interface {
	IsTokenBlacklisted(ctx context.Context, jti string) bool
}

// ProfileFinder confirms the token's profile still exists.
type ProfileFinder interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func AuthMiddleware(blacklist TokenBlacklist, profiles ProfileFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if blacklist != nil && blacklist.IsTokenBlacklisted(c.Request.Context(), claims.GetJTI()) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
			c.Abort()
			return
		}

		// Deleted accounts keep valid tokens until expiry
		if profiles != nil {
			if _, err := profiles.FindByID(c.Request.Context(), claims.ProfileID); err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				c.Abort()
				return
			}
		}

		c.Set(ContextProfileID, claims.ProfileID)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// ProfileID returns the authenticated profile id set by AuthMiddleware.
func ProfileID(c *gin.Context) string {
	return c.GetString(ContextProfileID)
}
