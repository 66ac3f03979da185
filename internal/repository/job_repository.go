package repository

import (
	"context"

	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

func (r *JobRepository) CreateJob(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// UpdateJobFields never touches applicant_count; that column moves only
// through IncrementApplicants and DecrementApplicants.
func (r *JobRepository) UpdateJobFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	delete(fields, "applicant_count")
	res := r.db.WithContext(ctx).Model(&model.Job{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *JobRepository) FindJobByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var j model.Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

func (r *JobRepository) ListJobs(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Job, int64, error) {
	var (
		jobs  []model.Job
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Job{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(offset(page, pageSize)).Limit(pageSize).Find(&jobs).Error
	return jobs, total, err
}

func (r *JobRepository) DeleteJob(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Job{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *JobRepository) IncrementApplicants(ctx context.Context, id uuid.UUID) (int, error) {
	return r.adjustApplicants(ctx, id, "applicant_count + 1")
}

func (r *JobRepository) DecrementApplicants(ctx context.Context, id uuid.UUID) (int, error) {
	return r.adjustApplicants(ctx, id, "GREATEST(applicant_count - 1, 0)")
}

func (r *JobRepository) adjustApplicants(ctx context.Context, id uuid.UUID, expr string) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Job{}).Where("id = ?", id).Update("applicant_count", gorm.Expr(expr))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&model.Job{}).Where("id = ?", id).Pluck("applicant_count", &count).Error
	})
	return count, err
}

func (r *JobRepository) SetJobEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	return r.db.WithContext(ctx).Model(&model.Job{}).Where("id = ?", id).Update("embedding", embedding).Error
}
