package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	ip := c.IP()
	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredential) && h.bruteForceProtection != nil {
			_ = h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.FromError(c, err)
	}

	// Clear failed attempts on successful login
	if h.bruteForceProtection != nil {
		_ = h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	return response.Success(c, result)
}
