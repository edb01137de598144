package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gallery-service/internal/api/dto"
	"github.com/spec-kit/gallery-service/internal/auth"
	"github.com/spec-kit/gallery-service/internal/domain"
	"github.com/spec-kit/gallery-service/internal/service"
	apperrors "github.com/spec-kit/gallery-service/pkg/util"
)

// AuthHandler exposes admin session endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *auth.SessionManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessions *auth.SessionManager) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions}
}

// Setup handles POST /auth/setup, the explicit first-admin bootstrap.
func (h *AuthHandler) Setup(c *fiber.Ctx) error {
	var req dto.SetupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, err := h.auth.Bootstrap(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAdminExists) {
			return apperrors.NewConflict("setup already completed", nil)
		}
		return apperrors.MapError(err)
	}

	session, err := h.sessions.Create(c, &domain.AuthUser{ID: user.ID, Email: user.Email})
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user":    dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email},
			"session": dto.SessionResponse{ExpiresAt: session.ExpiresAt},
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, err := h.auth.Login(c.Context(), req.Email, req.Password, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyAttempts):
			return apperrors.NewTooManyRequests("too many login attempts")
		case errors.Is(err, service.ErrPasswordNotSet):
			return apperrors.NewDomainError("PASSWORD_SETUP_REQUIRED", "password setup required", http.StatusForbidden, nil)
		default:
			return apperrors.NewUnauthorized("invalid email or password")
		}
	}

	session, err := h.sessions.Create(c, &domain.AuthUser{ID: user.ID, Email: user.Email})
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":    dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email},
			"session": dto.SessionResponse{ExpiresAt: session.ExpiresAt},
		},
	})
}

// Refresh handles POST /auth/refresh, rotating the full token pair.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	session, user, err := h.sessions.Refresh(c)
	if err != nil {
		return apperrors.NewUnauthorized("no valid session")
	}

	h.auth.NotifySessionRefreshed(c.Context(), user)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":    dto.UserResponse{ID: user.ID, Email: user.Email},
			"session": dto.SessionResponse{ExpiresAt: session.ExpiresAt},
		},
	})
}

// Logout handles POST /auth/logout. Always succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var authUser *domain.AuthUser
	if principal, ok := auth.PrincipalFromContext(c); ok {
		authUser = &domain.AuthUser{ID: principal.User.ID, Email: principal.User.Email}
	}

	h.sessions.Destroy(c)
	h.auth.NotifySessionDestroyed(c.Context(), authUser)
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	user := principal.User
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email},
		},
	})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}

	if err := h.auth.ChangePassword(c.Context(), principal.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return apperrors.NewUnauthorized("invalid email or password")
		case errors.Is(err, service.ErrPasswordNotSet):
			return apperrors.NewDomainError("PASSWORD_SETUP_REQUIRED", "password setup required", http.StatusForbidden, nil)
		default:
			return apperrors.MapError(err)
		}
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetPassword handles POST /auth/password/set for accounts without one.
func (h *AuthHandler) SetPassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.NewPassword == "" {
		return apperrors.NewValidationError("new password required", nil)
	}

	if err := h.auth.SetPassword(c.Context(), principal.User.ID, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrPasswordAlreadySet) {
			return apperrors.NewConflict("password already set", nil)
		}
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// RequestPasswordReset handles POST /auth/password/reset/request. The
// response is identical whether or not the email exists.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	if _, err := h.auth.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return apperrors.MapError(err)
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{
			"message": "if the address is registered, a reset link has been sent",
		},
	})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.ResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token and new password required", nil)
	}

	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			return apperrors.NewValidationError("reset token invalid, expired or used", nil)
		}
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
