package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentService manages banners, menus and widgets.
type ContentService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentService(db *gorm.DB, log *logger.Logger) *ContentService {
	return &ContentService{db: db, log: orNop(log)}
}

var errContentKind = apierr.Validation(apierr.FieldError{Field: "kind", Message: "kind must be one of: banner menu widget"})

// ContentBlockInput is the body of a new block.
type ContentBlockInput struct {
	Kind     model.ContentKind `json:"kind" validate:"required,oneof=banner menu widget"`
	Title    string            `json:"title" validate:"required,max=255"`
	Body     string            `json:"body" validate:"omitempty,max=20000"`
	LinkURL  string            `json:"link_url" validate:"omitempty,max=2048"`
	ImageURL string            `json:"image_url" validate:"omitempty,max=2048"`
	Position int               `json:"position" validate:"gte=0"`
	IsActive *bool             `json:"is_active"`
	Settings datatypes.JSON    `json:"settings"`
}

// ContentBlockPatch is a partial block update. Nil fields are left unchanged.
type ContentBlockPatch struct {
	Kind     *model.ContentKind `json:"kind" validate:"omitempty,oneof=banner menu widget"`
	Title    *string            `json:"title" validate:"omitempty,min=1,max=255"`
	Body     *string            `json:"body" validate:"omitempty,max=20000"`
	LinkURL  *string            `json:"link_url" validate:"omitempty,max=2048"`
	ImageURL *string            `json:"image_url" validate:"omitempty,max=2048"`
	Position *int               `json:"position" validate:"omitempty,gte=0"`
	IsActive *bool              `json:"is_active"`
	Settings *datatypes.JSON    `json:"settings"`
}

func (p ContentBlockPatch) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if p.Kind != nil {
		u["kind"] = *p.Kind
	}
	if p.Title != nil {
		u["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Body != nil {
		u["body"] = *p.Body
	}
	if p.LinkURL != nil {
		u["link_url"] = *p.LinkURL
	}
	if p.ImageURL != nil {
		u["image_url"] = *p.ImageURL
	}
	if p.Position != nil {
		u["position"] = *p.Position
	}
	if p.IsActive != nil {
		u["is_active"] = *p.IsActive
	}
	if p.Settings != nil {
		u["settings"] = *p.Settings
	}
	return u
}

// ListActive returns the active blocks of one kind in display order.
func (s *ContentService) ListActive(ctx context.Context, kind model.ContentKind) ([]model.ContentBlock, error) {
	if !kind.Valid() {
		return nil, errContentKind
	}
	blocks := []model.ContentBlock{}
	err := s.db.WithContext(ctx).
		Where("kind = ? AND is_active = ?", kind, true).
		Order("position ASC, id ASC").
		Find(&blocks).Error
	if err != nil {
		return nil, storageError(s.log, "list content", err)
	}
	return blocks, nil
}

// ListAll returns every block, optionally of one kind, for the admin console.
func (s *ContentService) ListAll(ctx context.Context, kind model.ContentKind) ([]model.ContentBlock, error) {
	q := s.db.WithContext(ctx).Order("kind ASC, position ASC, id ASC")
	if kind != "" {
		if !kind.Valid() {
			return nil, errContentKind
		}
		q = q.Where("kind = ?", kind)
	}
	blocks := []model.ContentBlock{}
	if err := q.Find(&blocks).Error; err != nil {
		return nil, storageError(s.log, "list all content", err)
	}
	return blocks, nil
}

func (s *ContentService) Get(ctx context.Context, id uint) (*model.ContentBlock, error) {
	var block model.ContentBlock
	if err := s.db.WithContext(ctx).First(&block, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, storageError(s.log, "get content", err)
	}
	return &block, nil
}

// Create adds a block. Blocks are active unless IsActive is false.
func (s *ContentService) Create(ctx context.Context, in ContentBlockInput) (*model.ContentBlock, error) {
	if !in.Kind.Valid() {
		return nil, errContentKind
	}
	block := model.ContentBlock{
		Kind:     in.Kind,
		Title:    strings.TrimSpace(in.Title),
		Body:     in.Body,
		LinkURL:  in.LinkURL,
		ImageURL: in.ImageURL,
		Position: in.Position,
		IsActive: in.IsActive == nil || *in.IsActive,
		Settings: in.Settings,
	}
	if err := s.db.WithContext(ctx).Create(&block).Error; err != nil {
		return nil, storageError(s.log, "create content", err)
	}
	return &block, nil
}

func (s *ContentService) Update(ctx context.Context, id uint, patch ContentBlockPatch) (*model.ContentBlock, error) {
	if patch.Kind != nil && !patch.Kind.Valid() {
		return nil, errContentKind
	}
	block, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if updates := patch.updates(); len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(block).Updates(updates).Error; err != nil {
			return nil, storageError(s.log, "update content", err)
		}
	}
	return s.Get(ctx, id)
}

func (s *ContentService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.ContentBlock{}, id)
	if res.Error != nil {
		return storageError(s.log, "delete content", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrContentNotFound
	}
	return nil
}
