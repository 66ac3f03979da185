package repository

import (
	"context"

	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PublishedPostRepository struct {
	db *gorm.DB
}

func NewPublishedPostRepository(db *gorm.DB) *PublishedPostRepository {
	return &PublishedPostRepository{db}
}

func (r *PublishedPostRepository) CreatePost(ctx context.Context, p *model.PublishedPost) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindPostByIdempotencyKey looks the key up within one user's job only.
func (r *PublishedPostRepository) FindPostByIdempotencyKey(ctx context.Context, userID, jobID uuid.UUID, key string) (*model.PublishedPost, error) {
	var p model.PublishedPost
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND job_id = ? AND idempotency_key = ?", userID, jobID, key).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PublishedPostRepository) ListPostsByJob(ctx context.Context, jobID uuid.UUID) ([]model.PublishedPost, error) {
	var posts []model.PublishedPost
	err := r.db.WithContext(ctx).Where("job_id = ?", jobID).Order("created_at DESC").Find(&posts).Error
	return posts, err
}
