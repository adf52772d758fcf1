package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"Zenframe/internal/auth"
	"Zenframe/internal/domain"
	"Zenframe/internal/ports"
)

// AuthHandler handles signup and login.
type AuthHandler struct {
	users  ports.UserRepository
	tokens *auth.JWTManager
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users ports.UserRepository, tokens *auth.JWTManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: logger.With("component", "auth_handler"),
	}
}

// Signup registers an account and returns an access token for it.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if err := auth.ValidatePassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	userID, err := h.users.CreateUser(c.Request.Context(), domain.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	token, err := h.tokens.GenerateToken(userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", userID)
	c.JSON(http.StatusCreated, SignupResponse{UserID: userID, AccessToken: token})
}

// Login exchanges email and password for an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, err := h.users.UserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(c, h.logger, domain.ErrInvalidCredentials)
		return
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(c, h.logger, domain.ErrInvalidCredentials)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{AccessToken: token})
}
