package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/gorm"
)

const passwordResetTTL = time.Hour

// PasswordResetSender delivers password reset links.
type PasswordResetSender interface {
	SendPasswordResetEmail(toEmail, token, name string) error
}

// AuthService handles accounts, sessions and tokens.
type AuthService struct {
	db        *gorm.DB
	jwt       *auth.JWTManager
	blacklist *auth.BlacklistService
	mailer    PasswordResetSender
	log       *logger.Logger
	now       func() time.Time
}

// NewAuthService creates an auth service. mailer may be nil.
func NewAuthService(db *gorm.DB, jwt *auth.JWTManager, blacklist *auth.BlacklistService, mailer PasswordResetSender, log *logger.Logger) *AuthService {
	return &AuthService{
		db:        db,
		jwt:       jwt,
		blacklist: blacklist,
		mailer:    mailer,
		log:       orNop(log),
		now:       time.Now,
	}
}

// ClientInfo identifies the device a session was opened from.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// TokenPair is what a login or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	SessionID    string `json:"session_id"`
}

// AuthResult is a user together with a fresh token pair.
type AuthResult struct {
	User *model.User `json:"user"`
	TokenPair
}

// RegisterInput is the body of a sign-up.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
}

var (
	errShortPassword = apierr.Validation(apierr.FieldError{Field: "password", Message: "password must be at least 8 characters"})
	errWrongPassword = apierr.Validation(apierr.FieldError{Field: "current_password", Message: "current password is incorrect"})
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return "", errShortPassword
	}
	return hash, err
}

// Register creates a student account and opens its first session.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, client ClientInfo) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	var taken []model.User
	err := s.db.WithContext(ctx).Unscoped().
		Select("email", "username").
		Where("email = ? OR username = ?", email, username).
		Find(&taken).Error
	if err != nil {
		return nil, storageError(s.log, "check account", err)
	}
	for _, u := range taken {
		if u.Email == email {
			return nil, ErrEmailTaken
		}
	}
	if len(taken) > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		if errors.Is(err, errShortPassword) {
			return nil, err
		}
		return nil, storageError(s.log, "hash password", err)
	}

	user := model.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         model.RoleStudent,
		Status:       model.UserStatusActive,
	}

	var result *AuthResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		pair, err := s.openSession(tx, &user, client)
		if err != nil {
			return err
		}
		result = &AuthResult{User: &user, TokenPair: *pair}
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, storageError(s.log, "register", err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return result, nil
}

// Login checks credentials and opens a new session.
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, storageError(s.log, "find user", err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredential
	}
	if !user.IsActive() {
		return nil, ErrUserInactive
	}

	pair, err := s.openSession(s.db.WithContext(ctx), &user, client)
	if err != nil {
		return nil, storageError(s.log, "open session", err)
	}
	return &AuthResult{User: &user, TokenPair: *pair}, nil
}

func (s *AuthService) openSession(db *gorm.DB, user *model.User, client ClientInfo) (*TokenPair, error) {
	sessionID := uuid.NewString()
	pair, refreshJTI, err := s.issue(user, sessionID)
	if err != nil {
		return nil, err
	}

	session := model.UserSession{
		ID:         sessionID,
		UserID:     user.ID,
		RefreshJTI: refreshJTI,
		IPAddress:  client.IP,
		UserAgent:  client.UserAgent,
		ExpiresAt:  s.now().Add(s.jwt.RefreshTTL()),
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *AuthService) issue(user *model.User, sessionID string) (*TokenPair, string, error) {
	sub := auth.TokenSubject{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		SessionID:    sessionID,
	}
	access, _, err := s.jwt.GenerateAccessToken(sub)
	if err != nil {
		return nil, "", err
	}
	refresh, refreshJTI, err := s.jwt.GenerateRefreshToken(sub)
	if err != nil {
		return nil, "", err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwt.AccessTTL() / time.Second),
		SessionID:    sessionID,
	}, refreshJTI, nil
}

// Refresh trades a refresh token for a new pair and rotates the session's
// refresh token. Presenting an already rotated token ends the session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := s.blacklist.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, storageError(s.log, "check blacklist", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, storageError(s.log, "load user", err)
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidToken
	}
	if !user.IsActive() {
		return nil, ErrUserInactive
	}

	var session model.UserSession
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", claims.SessionID, user.ID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionEnded
		}
		return nil, storageError(s.log, "load session", err)
	}
	if !session.IsActive(s.now()) {
		return nil, ErrSessionEnded
	}
	if session.RefreshJTI != claims.ID {
		s.log.Warn("refresh token reuse detected", "user_id", user.ID, "session_id", session.ID)
		if err := s.revokeSession(ctx, s.db, &session); err != nil {
			return nil, storageError(s.log, "revoke session", err)
		}
		return nil, ErrSessionEnded
	}

	pair, refreshJTI, err := s.issue(&user, session.ID)
	if err != nil {
		return nil, storageError(s.log, "issue tokens", err)
	}

	res := s.db.WithContext(ctx).Model(&model.UserSession{}).
		Where("id = ? AND refresh_jti = ? AND revoked_at IS NULL", session.ID, claims.ID).
		Update("refresh_jti", refreshJTI)
	if res.Error != nil {
		return nil, storageError(s.log, "rotate session", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrSessionEnded
	}
	return pair, nil
}

// Logout blacklists the access token and ends its session.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	expiresAt := s.now().Add(s.jwt.AccessTTL())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.blacklist.RevokeToken(ctx, claims.ID, claims.UserID, expiresAt, "logout"); err != nil {
		return storageError(s.log, "blacklist token", err)
	}
	if claims.SessionID == "" {
		return nil
	}

	err := s.db.WithContext(ctx).Model(&model.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", claims.SessionID, claims.UserID).
		Update("revoked_at", s.now()).Error
	if err != nil {
		return storageError(s.log, "revoke session", err)
	}
	return nil
}

// ListSessions returns the user's live sessions, most recent first.
func (s *AuthService) ListSessions(ctx context.Context, userID uint) ([]model.UserSession, error) {
	sessions := []model.UserSession{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, s.now()).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, storageError(s.log, "list sessions", err)
	}
	return sessions, nil
}

// RevokeSession ends one of the user's sessions. Its refresh token stops
// working immediately and its access tokens at the next request.
func (s *AuthService) RevokeSession(ctx context.Context, userID uint, sessionID string) error {
	var session model.UserSession
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return storageError(s.log, "load session", err)
	}
	if session.RevokedAt != nil {
		return nil
	}
	if err := s.revokeSession(ctx, s.db, &session); err != nil {
		return storageError(s.log, "revoke session", err)
	}
	return nil
}

func (s *AuthService) revokeSession(ctx context.Context, db *gorm.DB, session *model.UserSession) error {
	return db.WithContext(ctx).Model(session).Update("revoked_at", s.now()).Error
}

// ForgotPassword mails a reset link when the address belongs to an account.
// Unknown addresses succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return storageError(s.log, "find user", err)
	}
	if !user.IsActive() {
		return nil
	}

	token := model.PasswordResetToken{
		UserID:    user.ID,
		Token:     strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""),
		ExpiresAt: s.now().Add(passwordResetTTL),
	}
	if err := s.db.WithContext(ctx).Create(&token).Error; err != nil {
		return storageError(s.log, "create reset token", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordResetEmail(user.Email, token.Token, user.Name); err != nil {
			s.log.Error("failed to send password reset email", "user_id", user.ID, "error", err)
		}
	}
	return nil
}

// ResetPassword sets a new password with a mailed token and signs the user
// out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		if errors.Is(err, errShortPassword) {
			return err
		}
		return storageError(s.log, "hash password", err)
	}

	var reset model.PasswordResetToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&reset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenUsed
		}
		return storageError(s.log, "find reset token", err)
	}
	if !reset.Usable(s.now()) {
		return ErrResetTokenUsed
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.PasswordResetToken{}).
			Where("id = ? AND used_at IS NULL", reset.ID).
			Update("used_at", s.now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrResetTokenUsed
		}
		return s.setPassword(tx, reset.UserID, hash)
	})
	if err != nil {
		if errors.Is(err, ErrResetTokenUsed) {
			return err
		}
		return storageError(s.log, "reset password", err)
	}
	return nil
}

// ChangePassword replaces the password after checking the current one.
// Every session, including the caller's, is ended.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(user.PasswordHash, current); err != nil {
		return errWrongPassword
	}
	hash, err := hashPassword(next)
	if err != nil {
		if errors.Is(err, errShortPassword) {
			return err
		}
		return storageError(s.log, "hash password", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.setPassword(tx, userID, hash)
	})
	if err != nil {
		return storageError(s.log, "change password", err)
	}
	return nil
}

// setPassword stores hash, bumps the token version and ends every session.
func (s *AuthService) setPassword(tx *gorm.DB, userID uint, hash string) error {
	err := tx.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password_hash": hash,
		"token_version": gorm.Expr("token_version + ?", 1),
	}).Error
	if err != nil {
		return err
	}
	return tx.Model(&model.UserSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", s.now()).Error
}

// GetProfile loads the caller's own account.
func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError(s.log, "get profile", err)
	}
	return &user, nil
}

// ProfilePatch is a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Bio      *string `json:"bio" validate:"omitempty,max=2000"`
}

func (p ProfilePatch) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if p.Name != nil {
		u["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Username != nil {
		u["username"] = strings.TrimSpace(*p.Username)
	}
	if p.Bio != nil {
		u["bio"] = *p.Bio
	}
	return u
}

// UpdateProfile applies patch to the caller's own account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, patch ProfilePatch) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if updates := patch.updates(); len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			if isDuplicate(err) {
				return nil, ErrUsernameTaken
			}
			return nil, storageError(s.log, "update profile", err)
		}
	}
	return s.GetProfile(ctx, userID)
}

// CleanupExpired removes sessions and reset tokens that can no longer be used.
func (s *AuthService) CleanupExpired(ctx context.Context) (int64, error) {
	now := s.now()
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("expires_at < ? OR revoked_at < ?", now, now.Add(-24*time.Hour)).Delete(&model.UserSession{})
		if res.Error != nil {
			return res.Error
		}
		removed += res.RowsAffected

		res = tx.Where("expires_at < ? OR used_at IS NOT NULL", now).Delete(&model.PasswordResetToken{})
		if res.Error != nil {
			return res.Error
		}
		removed += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, storageError(s.log, "cleanup sessions", err)
	}
	return removed, nil
}
