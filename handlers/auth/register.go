package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

// AuthHandler handles account, session and profile endpoints
type AuthHandler struct {
	auth                 *services.AuthService
	validator            *validation.Validator
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler. bruteForceProtection may be nil.
func NewAuthHandler(authService *services.AuthService, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		auth:                 authService,
		validator:            validation.NewValidator(),
		bruteForceProtection: bruteForceProtection,
	}
}

func clientInfo(c *fiber.Ctx) services.ClientInfo {
	return services.ClientInfo{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}
	if ok, msg := validation.ValidateUsername(req.Username); !ok {
		return response.ValidationError(c, []apierr.FieldError{{Field: "username", Message: msg}})
	}

	result, err := h.auth.Register(c.UserContext(), req, clientInfo(c))
	if err != nil {
		return response.FromError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(response.Response{
		Success: true,
		Message: "User registered successfully",
		Data:    result,
	})
}
