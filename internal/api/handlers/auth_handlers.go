package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	"github.com/wisdomindex/wealth_service/internal/domain/repositories"
	"github.com/wisdomindex/wealth_service/internal/infrastructure/config"
	"github.com/wisdomindex/wealth_service/pkg/auth"
	"github.com/wisdomindex/wealth_service/pkg/crypto"
	apperrors "github.com/wisdomindex/wealth_service/pkg/errors"
	"github.com/wisdomindex/wealth_service/pkg/logger"
	obs "github.com/wisdomindex/wealth_service/pkg/metrics"
)

// AuthHandler serves login and current-user endpoints.
type AuthHandler struct {
	users  repositories.UserRepository
	config *config.Config
	logger *logger.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(users repositories.UserRepository, cfg *config.Config, log *logger.Logger) *AuthHandler {
	return &AuthHandler{users: users, config: cfg, logger: log}
}

// Login verifies credentials and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req entities.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request payload", map[string]interface{}{"error": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		h.logger.CtxError(ctx, "login lookup failed", "error", err)
		respondAppError(c, err)
		return
	}
	if user == nil || !user.IsActive || !crypto.ValidatePassword(req.Password, user.PasswordHash) {
		obs.RecordAuthenticationAttempt("failure")
		respondAppError(c, apperrors.ErrInvalidCredentials)
		return
	}

	ttl := time.Duration(h.config.JWT.AccessTTL) * time.Second
	token, expiresAt, err := auth.GenerateToken(
		user.ID, user.ClientID, user.Email, user.Role,
		h.config.JWT.Secret, h.config.JWT.Issuer, ttl)
	if err != nil {
		h.logger.CtxError(ctx, "token issuance failed", "error", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", nil)
		return
	}

	if err := h.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Login still succeeds; the timestamp is advisory.
		h.logger.CtxWarn(ctx, "failed to record last login", "error", err, "user_id", user.ID)
	}

	obs.RecordAuthenticationAttempt("success")
	c.JSON(http.StatusOK, entities.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		ClientID:    user.ClientID,
	})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	userIDVal, exists := c.Get("user_id")
	userID, ok := userIDVal.(uuid.UUID)
	if !exists || !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated", nil)
		return
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		h.logger.CtxError(ctx, "current user lookup failed", "error", err, "user_id", userID)
		respondAppError(c, err)
		return
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
		return
	}

	c.JSON(http.StatusOK, user)
}
