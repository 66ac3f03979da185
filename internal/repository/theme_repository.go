package repository

import (
	"context"

	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ThemeRepository struct {
	db *gorm.DB
}

func NewThemeRepository(db *gorm.DB) *ThemeRepository {
	return &ThemeRepository{db}
}

func (r *ThemeRepository) CreateTheme(ctx context.Context, t *model.Theme) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *ThemeRepository) FindThemeByID(ctx context.Context, id uuid.UUID) (*model.Theme, error) {
	var t model.Theme
	err := r.db.WithContext(ctx).
		Preload("SamplePosts", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *ThemeRepository) ListThemes(ctx context.Context, userID uuid.UUID) ([]model.Theme, error) {
	var themes []model.Theme
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&themes).Error
	return themes, err
}

func (r *ThemeRepository) DeleteTheme(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Theme{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ThemeRepository) UpdateThemeStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Theme{}).Where("id = ?", id).Update("status", status).Error
}

// SaveSamplePosts attaches generated posts and marks the theme completed atomically.
func (r *ThemeRepository) SaveSamplePosts(ctx context.Context, themeID uuid.UUID, posts []model.SamplePost) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(posts) > 0 {
			if err := tx.Create(&posts).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Theme{}).Where("id = ?", themeID).Update("status", model.ThemeStatusCompleted).Error
	})
}
