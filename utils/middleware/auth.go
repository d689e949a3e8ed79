package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// authFailure is the response owed for a rejected credential.
type authFailure struct {
	status  int
	code    string
	message string
}

func unauthorized(message string) *authFailure {
	return &authFailure{status: fiber.StatusUnauthorized, code: "UNAUTHORIZED", message: message}
}

func (f *authFailure) send(c *fiber.Ctx) error {
	return response.Error(c, f.status, f.message, f.code)
}

// resolve turns the bearer token into a verified user and its claims.
func (m *AuthMiddleware) resolve(c *fiber.Ctx) (*model.User, *auth.Claims, *authFailure) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil, unauthorized("Missing authorization token")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, nil, unauthorized("Invalid authorization format")
	}

	claims, err := m.jwtManager.ValidateToken(parts[1])
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, nil, &authFailure{status: fiber.StatusUnauthorized, code: "TOKEN_EXPIRED", message: "Token has expired"}
		}
		return nil, nil, unauthorized("Invalid token")
	}

	if claims.TokenType != auth.TokenTypeAccess {
		return nil, nil, unauthorized("Invalid token type")
	}

	isRevoked, err := m.blacklistService.IsTokenRevoked(c.UserContext(), claims.ID)
	if err != nil {
		return nil, nil, &authFailure{status: fiber.StatusInternalServerError, code: "INTERNAL_ERROR", message: "Failed to check token status"}
	}
	if isRevoked {
		return nil, nil, unauthorized("Token has been revoked")
	}

	var user model.User
	if err := m.db.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, unauthorized("User not found")
		}
		return nil, nil, &authFailure{status: fiber.StatusInternalServerError, code: "INTERNAL_ERROR", message: "Failed to load user"}
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, unauthorized("Token has been invalidated")
	}

	if !user.IsActive() {
		return nil, nil, unauthorized("Account is inactive")
	}

	if claims.SessionID != "" {
		var session model.UserSession
		err := m.db.Where("id = ? AND user_id = ?", claims.SessionID, user.ID).First(&session).Error
		if err != nil || !session.IsActive(time.Now()) {
			return nil, nil, unauthorized("Session has ended")
		}
	}

	return &user, claims, nil
}

func setLocals(c *fiber.Ctx, user *model.User, claims *auth.Claims) {
	// the stored role wins over the one baked into the token
	c.Locals("user_id", user.ID)
	c.Locals("user_email", user.Email)
	c.Locals("user_role", user.Role)
	c.Locals("claims", claims)
	c.Locals("user", user)
	c.Locals("token_jti", claims.ID)
	c.Locals("session_id", claims.SessionID)
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, failure := m.resolve(c)
		if failure != nil {
			return failure.send(c)
		}
		setLocals(c, user, claims)
		return c.Next()
	}
}

// Optional is middleware that allows requests with or without a token
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}
		if user, claims, failure := m.resolve(c); failure == nil {
			setLocals(c, user, claims)
		}
		return c.Next()
	}
}

// RequireRole is middleware that requires one of the given roles. Admins always pass.
// It must run after Required.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := GetUserRole(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}
		if !auth.Allows(role, roles...) {
			return response.Forbidden(c, "Insufficient permissions")
		}
		return c.Next()
	}
}

// RequireAdmin authenticates the request and requires the admin role
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, failure := m.resolve(c)
		if failure != nil {
			return failure.send(c)
		}
		if user.Role != model.RoleAdmin {
			return response.Forbidden(c, "Admin access required")
		}
		setLocals(c, user, claims)
		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID := c.Locals("user_id")
	if userID == nil {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *fiber.Ctx) (string, bool) {
	role := c.Locals("user_role")
	if role == nil {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims := c.Locals("claims")
	if claims == nil {
		return nil, false
	}
	claimsData, ok := claims.(*auth.Claims)
	return claimsData, ok
}
