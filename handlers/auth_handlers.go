package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/sthar2820/portfolio-website/middleware"
	"github.com/sthar2820/portfolio-website/models"
	"github.com/sthar2820/portfolio-website/store"
	"github.com/sthar2820/portfolio-website/utils"
)

type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}

type AuthHandlers struct {
	Users        UserLookup
	Tokens       *utils.TokenIssuer
	Revocations  store.RevocationStore
	SecureCookie bool
}

func NewAuthHandlers(users UserLookup, tokens *utils.TokenIssuer, revocations store.RevocationStore, secureCookie bool) *AuthHandlers {
	return &AuthHandlers{Users: users, Tokens: tokens, Revocations: revocations, SecureCookie: secureCookie}
}

// Login checks the admin's email and password and issues a session token, both
// as an HttpOnly cookie and in the response body.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.Users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("ERROR: Database error during login for %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check credentials"})
			return
		}
		log.Printf("Login failed for email %s: %v", req.Email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(req.Password)); err != nil {
		log.Printf("Login failed for email %s: password mismatch", req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, claims, err := h.Tokens.GenerateJWT(user)
	if err != nil {
		log.Printf("ERROR: Failed to generate JWT for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, tokenString, int(h.Tokens.TTL().Seconds()), "/", "", h.SecureCookie, true)

	log.Printf("Admin logged in: ID=%d, Email=%s. Session %s issued.", user.ID, user.Email, claims.ID)
	c.JSON(http.StatusOK, gin.H{
		"token":     tokenString,
		"expiresAt": claims.ExpiresAt.Time,
	})
}

// Logout revokes the current session until its natural expiry and clears the
// cookie.
func (h *AuthHandlers) Logout(c *gin.Context) {
	claims := c.MustGet(middleware.ClaimsKey).(*utils.Claims)

	if err := h.Revocations.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		log.Printf("ERROR: Failed to revoke session %s: %v", claims.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.SecureCookie, true)

	log.Printf("Admin logged out (session %s revoked).", claims.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandlers) Session(c *gin.Context) {
	claims := c.MustGet(middleware.ClaimsKey).(*utils.Claims)
	c.JSON(http.StatusOK, gin.H{
		"email":     claims.Email,
		"expiresAt": claims.ExpiresAt.Time,
	})
}
