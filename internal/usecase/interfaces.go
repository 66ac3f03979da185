package usecase

import (
	"context"
	"io"
	"time"

	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type JobStore interface {
	CreateJob(ctx context.Context, job *model.Job) error
	UpdateJobFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindJobByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	ListJobs(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Job, int64, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error
	IncrementApplicants(ctx context.Context, id uuid.UUID) (int, error)
	DecrementApplicants(ctx context.Context, id uuid.UUID) (int, error)
	SetJobEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error
}

type CandidateStore interface {
	CreateCandidate(ctx context.Context, c *model.Candidate) error
	UpdateCandidate(ctx context.Context, c *model.Candidate) error
	FindCandidateByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
	ListCandidates(ctx context.Context, userID uuid.UUID, jobID *uuid.UUID, page, pageSize int) ([]model.Candidate, int64, error)
	DeleteCandidate(ctx context.Context, id uuid.UUID) error
	SearchCandidates(ctx context.Context, userID uuid.UUID, embedding pgvector.Vector, topK int) ([]model.Candidate, error)
}

type TokenStore interface {
	FindTokenByUserID(ctx context.Context, userID uuid.UUID) (*model.LinkedInToken, error)
	UpsertToken(ctx context.Context, t *model.LinkedInToken) error
	DeleteTokenByUserID(ctx context.Context, userID uuid.UUID) error
}

type PostStore interface {
	CreatePost(ctx context.Context, p *model.PublishedPost) error
	FindPostByIdempotencyKey(ctx context.Context, userID, jobID uuid.UUID, key string) (*model.PublishedPost, error)
	ListPostsByJob(ctx context.Context, jobID uuid.UUID) ([]model.PublishedPost, error)
}

type ThemeStore interface {
	CreateTheme(ctx context.Context, t *model.Theme) error
	FindThemeByID(ctx context.Context, id uuid.UUID) (*model.Theme, error)
	ListThemes(ctx context.Context, userID uuid.UUID) ([]model.Theme, error)
	DeleteTheme(ctx context.Context, id uuid.UUID) error
	UpdateThemeStatus(ctx context.Context, id uuid.UUID, status string) error
	SaveSamplePosts(ctx context.Context, themeID uuid.UUID, posts []model.SamplePost) error
}

// PublishTask is a queued LinkedIn publish attempt. Key is the idempotency key
// shared by every attempt of the same publish.
type PublishTask struct {
	UserID uuid.UUID `json:"user_id"`
	JobID  uuid.UUID `json:"job_id"`
	Key    string    `json:"key"`
}

// TaskQueue schedules background work. Implemented on asynq by the worker package.
type TaskQueue interface {
	EnqueuePublish(ctx context.Context, task PublishTask, delay time.Duration) error
	EnqueueThemeEnrichment(ctx context.Context, themeID uuid.UUID) error
}

// UploadFile is a file received from a client, not yet read.
type UploadFile struct {
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// TextExtractor turns an uploaded CV into plain text.
type TextExtractor func(filename string, data []byte) (string, error)
