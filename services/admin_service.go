package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/gorm"
)

// ReportSource runs the aggregate queries behind the admin reports.
type ReportSource interface {
	RevenueByCourse(ctx context.Context, from, to time.Time, courseIDs []int64) ([]database.CourseRevenue, error)
	EnrollmentTrend(ctx context.Context, days int) ([]database.DailyEnrollments, error)
}

// AdminService backs the admin console: users, settings, audit trail and reports.
type AdminService struct {
	db        *gorm.DB
	blacklist *auth.BlacklistService
	reports   ReportSource
	log       *logger.Logger
}

// NewAdminService creates an admin service. reports may be nil.
func NewAdminService(db *gorm.DB, blacklist *auth.BlacklistService, reports ReportSource, log *logger.Logger) *AdminService {
	return &AdminService{db: db, blacklist: blacklist, reports: reports, log: orNop(log)}
}

var (
	errReportRange = apierr.Validation(apierr.FieldError{Field: "to", Message: "to must be after from"})
	errRole        = apierr.Validation(apierr.FieldError{Field: "role", Message: "role must be one of: student instructor admin"})
	errStatus      = apierr.Validation(apierr.FieldError{Field: "status", Message: "status must be one of: active inactive"})
	errSettingType = apierr.Validation(apierr.FieldError{Field: "type", Message: "type must be one of: string int bool json"})
)

func validRole(role string) bool {
	return role == model.RoleStudent || role == model.RoleInstructor || role == model.RoleAdmin
}

// UserFilter narrows ListUsers.
type UserFilter struct {
	Role   string
	Status string
	Search string
	Page   Page
}

func (s *AdminService) ListUsers(ctx context.Context, f UserFilter) ([]model.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.User{})
	if f.Role != "" {
		query = query.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(username) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError(s.log, "count users", err)
	}

	page := f.Page.Normalize()
	users := []model.User{}
	if err := query.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, storageError(s.log, "list users", err)
	}
	return users, total, nil
}

func (s *AdminService) GetUser(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError(s.log, "get user", err)
	}
	return &user, nil
}

// UserPatch is an admin edit of an account. Nil fields are left unchanged.
type UserPatch struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=255"`
	Role   *string `json:"role" validate:"omitempty,oneof=student instructor admin"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (p UserPatch) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if p.Name != nil {
		u["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Role != nil {
		u["role"] = *p.Role
	}
	if p.Status != nil {
		u["status"] = *p.Status
	}
	return u
}

// UpdateUser applies patch. A role or status change signs the user out of
// every device.
func (s *AdminService) UpdateUser(ctx context.Context, actor Actor, userID uint, patch UserPatch) (*model.User, error) {
	if patch.Role != nil && !validRole(*patch.Role) {
		return nil, errRole
	}
	if patch.Status != nil && *patch.Status != model.UserStatusActive && *patch.Status != model.UserStatusInactive {
		return nil, errStatus
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	roleChanged := patch.Role != nil && *patch.Role != user.Role
	statusChanged := patch.Status != nil && *patch.Status != user.Status
	if user.ID == actor.UserID && (roleChanged || statusChanged) {
		return nil, ErrSelfDemotion
	}

	if updates := patch.updates(); len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, storageError(s.log, "update user", err)
		}
	}
	if roleChanged || statusChanged {
		if err := s.blacklist.RevokeAllUserTokens(ctx, user.ID); err != nil {
			return nil, storageError(s.log, "revoke user tokens", err)
		}
		s.log.Info("user access changed", "user_id", user.ID, "admin_id", actor.UserID)
	}
	return s.GetUser(ctx, userID)
}

// ListSettings returns every setting, or only the public ones.
func (s *AdminService) ListSettings(ctx context.Context, publicOnly bool) ([]model.AppSetting, error) {
	q := s.db.WithContext(ctx).Order("key ASC")
	if publicOnly {
		q = q.Where("is_public = ?", true)
	}
	settings := []model.AppSetting{}
	if err := q.Find(&settings).Error; err != nil {
		return nil, storageError(s.log, "list settings", err)
	}
	return settings, nil
}

func (s *AdminService) GetSetting(ctx context.Context, key string) (*model.AppSetting, error) {
	var setting model.AppSetting
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, storageError(s.log, "get setting", err)
	}
	return &setting, nil
}

// SettingInput is the body of a new setting.
type SettingInput struct {
	Key         string `json:"key" validate:"required,max=100"`
	Value       string `json:"value"`
	Type        string `json:"type" validate:"omitempty,oneof=string int bool json"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	IsPublic    bool   `json:"is_public"`
}

func validSettingType(t string) bool {
	switch t {
	case "string", "int", "bool", "json":
		return true
	}
	return false
}

func (s *AdminService) CreateSetting(ctx context.Context, in SettingInput) (*model.AppSetting, error) {
	if in.Type == "" {
		in.Type = "string"
	}
	if !validSettingType(in.Type) {
		return nil, errSettingType
	}
	setting := model.AppSetting{
		Key:         strings.TrimSpace(in.Key),
		Value:       in.Value,
		Type:        in.Type,
		Description: in.Description,
		IsPublic:    in.IsPublic,
	}
	if err := s.db.WithContext(ctx).Create(&setting).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrSettingExists
		}
		return nil, storageError(s.log, "create setting", err)
	}
	return &setting, nil
}

// SettingPatch is a partial setting update. Nil fields are left unchanged.
type SettingPatch struct {
	Value       *string `json:"value"`
	Type        *string `json:"type" validate:"omitempty,oneof=string int bool json"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsPublic    *bool   `json:"is_public"`
}

func (s *AdminService) UpdateSetting(ctx context.Context, key string, patch SettingPatch) (*model.AppSetting, error) {
	if patch.Type != nil && !validSettingType(*patch.Type) {
		return nil, errSettingType
	}
	setting, err := s.GetSetting(ctx, key)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Value != nil {
		updates["value"] = *patch.Value
	}
	if patch.Type != nil {
		updates["type"] = *patch.Type
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.IsPublic != nil {
		updates["is_public"] = *patch.IsPublic
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(setting).Updates(updates).Error; err != nil {
			return nil, storageError(s.log, "update setting", err)
		}
	}
	return s.GetSetting(ctx, key)
}

func (s *AdminService) DeleteSetting(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.AppSetting{})
	if res.Error != nil {
		return storageError(s.log, "delete setting", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSettingNotFound
	}
	return nil
}

// AuditFilter narrows ListAuditLogs.
type AuditFilter struct {
	AdminID  uint
	Action   string
	Resource string
	Page     Page
}

// ListAuditLogs pages through the admin audit trail, newest first.
func (s *AdminService) ListAuditLogs(ctx context.Context, f AuditFilter) ([]model.AdminAuditLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.AdminAuditLog{})
	if f.AdminID != 0 {
		query = query.Where("admin_id = ?", f.AdminID)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if f.Resource != "" {
		query = query.Where("resource = ?", f.Resource)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError(s.log, "count audit logs", err)
	}

	page := f.Page.Normalize()
	logs := []model.AdminAuditLog{}
	err := query.Preload("Admin").
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, storageError(s.log, "list audit logs", err)
	}
	return logs, total, nil
}

// RevenueReport sums the ledger per course for enrollments in [from, to).
func (s *AdminService) RevenueReport(ctx context.Context, from, to time.Time, courseIDs []int64) ([]database.CourseRevenue, error) {
	if s.reports == nil {
		return nil, ErrReportsDisabled
	}
	if !to.After(from) {
		return nil, errReportRange
	}
	rows, err := s.reports.RevenueByCourse(ctx, from, to, courseIDs)
	if err != nil {
		return nil, storageError(s.log, "revenue report", err)
	}
	return rows, nil
}

// EnrollmentTrend returns daily enrollment counts for the last days (1..365).
func (s *AdminService) EnrollmentTrend(ctx context.Context, days int) ([]database.DailyEnrollments, error) {
	if s.reports == nil {
		return nil, ErrReportsDisabled
	}
	if days < 1 || days > 365 {
		days = 30
	}
	rows, err := s.reports.EnrollmentTrend(ctx, days)
	if err != nil {
		return nil, storageError(s.log, "enrollment trend", err)
	}
	return rows, nil
}
