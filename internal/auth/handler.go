// File: internal/auth/handler.go
package auth

import (
	"errors"

	"rps_backend/internal/common"
	"rps_backend/internal/middleware"
	"rps_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// LoginRequest defines the structure for Google Sign-In requests.
type LoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	userService user.Service
	verifier    IdentityVerifier
	sessions    *SessionManager
	logger      *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(
	userService user.Service,
	verifier IdentityVerifier,
	sessions *SessionManager,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		userService: userService,
		verifier:    verifier,
		sessions:    sessions,
		logger:      logger.Named("AuthHandler"),
	}
}

// RegisterRoutes sets up the routes for authentication operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", h.logout)
		authGroup.GET("/me", h.me)
	}
}

// login verifies a Google ID token, upserts the user and establishes the session.
func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Login: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	claims, err := h.verifier.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	u, err := h.userService.SignIn(c.Request.Context(), *claims)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	if err := h.sessions.Establish(c, u.ID); err != nil {
		h.logger.Error("Failed to save session cookie", zap.String("userID", u.ID), zap.Error(err))
		common.RespondWithError(c, err)
		return
	}

	h.logger.Info("User signed in", zap.String("userID", u.ID))
	common.RespondOK(c, "Signed in successfully.", u)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.sessions.Revoke(c); err != nil {
		h.logger.Error("Failed to clear session cookie", zap.Error(err))
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("No active session."))
		return
	}
	common.RespondOK(c, "Current user retrieved successfully.", u)
}
