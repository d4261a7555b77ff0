// internal/api/handlers/auth_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"greencart-ops-api/internal/api/middleware"
	"greencart-ops-api/internal/apperr"
	"greencart-ops-api/internal/auth"
	"greencart-ops-api/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	Users    UserStore
	Sessions *auth.SessionManager
	Cookie   CookieConfig
	Logger   *zap.Logger
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *credentialsRequest) normalize() bool {
	r.Username = strings.TrimSpace(r.Username)
	return r.Username != "" && r.Password != ""
}

// Register creates a manager account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.normalize() {
		badRequest(c, "Username and password are required.")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, h.Logger, err, "Error registering user")
		return
	}

	if err := h.Users.CreateUser(c.Request.Context(), &models.User{Username: req.Username, Password: hashed}); err != nil {
		respondError(c, h.Logger, err, "Error registering user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Manager registered successfully."})
}

// Login verifies credentials and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.normalize() {
		badRequest(c, "Username and password are required.")
		return
	}

	user, err := h.Users.FindUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
			return
		}
		respondError(c, h.Logger, err, "Error logging in")
		return
	}
	if !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
		return
	}

	token, _, err := h.Sessions.Issue(user.ID.Hex(), user.Username)
	if err != nil {
		respondError(c, h.Logger, err, "Error logging in")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.Name, token, int(h.Sessions.TTL().Seconds()), "/", "", h.Cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully.", "userId": user.ID.Hex()})
}

// Logout clears the session cookie. Tokens are stateless and simply expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.Name, "", -1, "/", "", h.Cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

func (h *AuthHandler) Status(c *gin.Context) {
	token := middleware.SessionToken(c, h.Cookie.Name)
	if token != "" {
		if claims, err := h.Sessions.Parse(token); err == nil {
			c.JSON(http.StatusOK, gin.H{"isLoggedIn": true, "userId": claims.UserID()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"isLoggedIn": false})
}
