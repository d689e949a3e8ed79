package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshToken handles token refresh
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	pair, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, pair)
}

// Logout revokes the presented access token and ends its session
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	if err := h.auth.Logout(c.UserContext(), claims); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Logged out successfully", nil)
}

// ListSessions lists the caller's active sessions
// GET /api/v1/auth/sessions
func (h *AuthHandler) ListSessions(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	sessions, err := h.auth.ListSessions(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}

	current := ""
	if claims, ok := middleware.GetClaims(c); ok {
		current = claims.SessionID
	}
	return response.Success(c, fiber.Map{
		"sessions":        sessions,
		"current_session": current,
	})
}

// RevokeSession ends one of the caller's sessions
// DELETE /api/v1/auth/sessions/:id
func (h *AuthHandler) RevokeSession(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	if err := h.auth.RevokeSession(c.UserContext(), userID, c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Session revoked", nil)
}
