package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/estate-service/internal/api/dto"
	"github.com/estatehub/estate-service/internal/auth"
	"github.com/estatehub/estate-service/internal/service"
	apperrors "github.com/estatehub/estate-service/pkg/util/errorutil"
)

// AuthHandler exposes login, logout and presence endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	user, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token.Token, ExpiresAt: token.ExpiresAt},
		},
	})
}

// Logout POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), user, clientInfo(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Offline POST /api/auth/offline. Sent by the browser on tab close; the
// response body is ignored.
func (h *AuthHandler) Offline(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Offline(c.UserContext(), user); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Heartbeat POST /api/auth/heartbeat.
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Heartbeat(c.UserContext(), user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "ok"})
}

// Me GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	fresh, err := h.auth.Me(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(fresh)})
}
