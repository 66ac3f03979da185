package repository

import (
	"context"

	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LinkedInTokenRepository struct {
	db *gorm.DB
}

func NewLinkedInTokenRepository(db *gorm.DB) *LinkedInTokenRepository {
	return &LinkedInTokenRepository{db}
}

func (r *LinkedInTokenRepository) FindTokenByUserID(ctx context.Context, userID uuid.UUID) (*model.LinkedInToken, error) {
	var t model.LinkedInToken
	if err := r.db.WithContext(ctx).First(&t, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// UpsertToken replaces the user's credential wholesale in one statement,
// relying on the unique index on user_id.
func (r *LinkedInTokenRepository) UpsertToken(ctx context.Context, t *model.LinkedInToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "member_id", "scope", "expires_at", "updated_at",
			}),
		}).Create(t).Error
	})
}

func (r *LinkedInTokenRepository) DeleteTokenByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.LinkedInToken{}).Error
}
