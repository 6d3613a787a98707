package handlers

import (
	"net/http"

	"gametracker/internal/config"
	"gametracker/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler exchanges the owner password for a token
type AuthHandler struct {
	cfg    config.AuthConfig
	issuer *middleware.TokenIssuer
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(cfg config.AuthConfig, issuer *middleware.TokenIssuer, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{cfg: cfg, issuer: issuer, logger: logger}
}

// TokenRequest represents the token request body
type TokenRequest struct {
	Password string `json:"password" binding:"required"`
}

// IssueToken checks the owner password and returns a signed token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	if !h.cfg.Enabled || h.issuer == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "auth is disabled"})
		return
	}

	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.OwnerPasswordHash), []byte(req.Password)); err != nil {
		h.logger.Warn("owner login rejected", zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, expires, err := h.issuer.Issue()
	if err != nil {
		h.logger.Error("issue token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": expires,
	})
}
