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

// GetProfile returns the authenticated user's profile
// GET /api/v1/profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	user, err := h.auth.GetProfile(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, user)
}

// UpdateProfile updates the authenticated user's profile
// PATCH /api/v1/profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req services.ProfilePatch
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}
	if req.Username != nil {
		if ok, msg := validation.ValidateUsername(*req.Username); !ok {
			return response.ValidationError(c, []apierr.FieldError{{Field: "username", Message: msg}})
		}
	}
	if req.Bio != nil {
		bio := validation.StripHTML(*req.Bio)
		req.Bio = &bio
	}

	user, err := h.auth.UpdateProfile(c.UserContext(), userID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Profile updated successfully", user)
}
