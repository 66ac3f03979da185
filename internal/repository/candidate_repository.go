package repository

import (
	"context"

	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db}
}

func (r *CandidateRepository) CreateCandidate(ctx context.Context, c *model.Candidate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CandidateRepository) UpdateCandidate(ctx context.Context, c *model.Candidate) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CandidateRepository) FindCandidateByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	var c model.Candidate
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CandidateRepository) ListCandidates(ctx context.Context, userID uuid.UUID, jobID *uuid.UUID, page, pageSize int) ([]model.Candidate, int64, error) {
	var (
		candidates []model.Candidate
		total      int64
	)
	q := r.db.WithContext(ctx).Model(&model.Candidate{}).Where("user_id = ?", userID)
	if jobID != nil {
		q = q.Where("job_id = ?", *jobID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(offset(page, pageSize)).Limit(pageSize).Find(&candidates).Error
	return candidates, total, err
}

func (r *CandidateRepository) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Candidate{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchCandidates ranks the owner's analyzed candidates by L2 distance to embedding.
func (r *CandidateRepository) SearchCandidates(ctx context.Context, userID uuid.UUID, embedding pgvector.Vector, topK int) ([]model.Candidate, error) {
	var candidates []model.Candidate
	err := r.db.WithContext(ctx).Raw(`
        SELECT *
        FROM candidates
        WHERE user_id = ? AND embedding IS NOT NULL
        ORDER BY embedding <-> ?
        LIMIT ?
    `, userID, embedding, topK).Scan(&candidates).Error
	return candidates, err
}
