package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sthar2820/portfolio-website/store"
	"github.com/sthar2820/portfolio-website/utils"
)

// SessionCookie is the cookie carrying the admin session token.
const SessionCookie = "admin_token"

// ClaimsKey is the gin context key holding the *utils.Claims of an
// authenticated request.
const ClaimsKey = "claims"

// AuthRequired accepts a session token from the admin_token cookie or an
// Authorization: Bearer header, and rejects revoked sessions.
func AuthRequired(tokens *utils.TokenIssuer, revocations store.RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
			if tokenString == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
				return
			}
		}

		claims, err := tokens.ValidateJWT(tokenString)
		if err != nil {
			log.Printf("AuthRequired: Invalid JWT token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Printf("ERROR: AuthRequired: revocation check failed: %v", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session check unavailable"})
			return
		}
		if revoked {
			log.Printf("AuthRequired: %v (session %s)", utils.ErrTokenRevoked, claims.ID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Session has been logged out"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
