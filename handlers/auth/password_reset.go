package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// ForgotPasswordRequest represents the forgot password request body
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents the reset password request body
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// ChangePasswordRequest represents the change password request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// ForgotPassword mails a reset link. The answer is the same whether or not
// the address is registered.
// POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	if err := h.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "If an account exists for this email, a reset link has been sent", nil)
}

// ResetPassword sets a new password using a reset token
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	if err := h.auth.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Password has been reset. Please log in again", nil)
}

// ChangePassword changes the caller's password and signs out every session
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req ChangePasswordRequest
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	if err := h.auth.ChangePassword(c.UserContext(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Password changed. Please log in again", nil)
}
