package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fadilmartias/klarus-hr/internal/logger"
	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/fadilmartias/klarus-hr/internal/service"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

var (
	workplaceTypes  = []string{"on-site", "hybrid", "remote"}
	employmentTypes = []string{"full-time", "part-time", "contract", "internship", "temporary"}
)

const maxActiveDays = 365

// CreateJobInput is the combined payload of both job wizard steps.
type CreateJobInput struct {
	Title          string   `json:"title"`
	Location       string   `json:"location"`
	WorkplaceType  string   `json:"workplace_type"`
	EmploymentType string   `json:"employment_type"`
	Description    string   `json:"description"`
	Technologies   []string `json:"technologies"`
	ActiveDays     int      `json:"active_days"`
	Status         string   `json:"status"`
}

type UpdateJobInput struct {
	Title          *string   `json:"title"`
	Location       *string   `json:"location"`
	WorkplaceType  *string   `json:"workplace_type"`
	EmploymentType *string   `json:"employment_type"`
	Description    *string   `json:"description"`
	Technologies   *[]string `json:"technologies"`
	ActiveDays     *int      `json:"active_days"`
}

type JobUsecase struct {
	jobs       JobStore
	candidates CandidateStore
	embeddings service.EmbeddingServiceInterface
}

func NewJobUsecase(jobs JobStore, candidates CandidateStore, embeddings service.EmbeddingServiceInterface) *JobUsecase {
	return &JobUsecase{jobs: jobs, candidates: candidates, embeddings: embeddings}
}

func (uc *JobUsecase) Create(ctx context.Context, userID uuid.UUID, in CreateJobInput) (*model.Job, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(in.Location) == "" {
		fields["location"] = "location is required"
	}
	if !oneOf(in.WorkplaceType, workplaceTypes) {
		fields["workplace_type"] = "workplace_type must be one of " + strings.Join(workplaceTypes, ", ")
	}
	if !oneOf(in.EmploymentType, employmentTypes) {
		fields["employment_type"] = "employment_type must be one of " + strings.Join(employmentTypes, ", ")
	}
	if in.ActiveDays == 0 {
		in.ActiveDays = model.DefaultJobActiveDays
	}
	if in.ActiveDays < 1 || in.ActiveDays > maxActiveDays {
		fields["active_days"] = "active_days must be between 1 and 365"
	}
	if in.Status == "" {
		in.Status = model.JobStatusDraft
	}
	if !model.IsValidJobStatus(in.Status) {
		fields["status"] = "status must be draft, published or closed"
	}
	if len(fields) > 0 {
		return nil, validationError(fields)
	}

	job := &model.Job{
		UserID:         userID,
		Title:          strings.TrimSpace(in.Title),
		Location:       strings.TrimSpace(in.Location),
		WorkplaceType:  in.WorkplaceType,
		EmploymentType: in.EmploymentType,
		Description:    in.Description,
		Technologies:   cleanTags(in.Technologies),
		Status:         in.Status,
		ActiveDays:     in.ActiveDays,
	}
	if err := uc.jobs.CreateJob(ctx, job); err != nil {
		return nil, internal("failed to create job", err)
	}
	return job, nil
}

func (uc *JobUsecase) Get(ctx context.Context, userID, id uuid.UUID) (*model.Job, error) {
	job, err := uc.jobs.FindJobByID(ctx, id)
	if err != nil {
		return nil, lookupError("job", err)
	}
	if job.UserID != userID {
		return nil, forbidden()
	}
	return job, nil
}

// GetPublic serves the public application page; only published jobs are visible.
func (uc *JobUsecase) GetPublic(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := uc.jobs.FindJobByID(ctx, id)
	if err != nil {
		return nil, lookupError("job", err)
	}
	if job.Status != model.JobStatusPublished {
		return nil, notFound("job")
	}
	return job, nil
}

func (uc *JobUsecase) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Job, int64, int, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	jobs, total, err := uc.jobs.ListJobs(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, page, pageSize, internal("failed to list jobs", err)
	}
	return jobs, total, page, pageSize, nil
}

func (uc *JobUsecase) Update(ctx context.Context, userID, id uuid.UUID, in UpdateJobInput) (*model.Job, error) {
	if _, err := uc.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	errs := map[string]string{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			errs["title"] = "title cannot be empty"
		}
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Location != nil {
		updates["location"] = strings.TrimSpace(*in.Location)
	}
	if in.WorkplaceType != nil {
		if !oneOf(*in.WorkplaceType, workplaceTypes) {
			errs["workplace_type"] = "workplace_type must be one of " + strings.Join(workplaceTypes, ", ")
		}
		updates["workplace_type"] = *in.WorkplaceType
	}
	if in.EmploymentType != nil {
		if !oneOf(*in.EmploymentType, employmentTypes) {
			errs["employment_type"] = "employment_type must be one of " + strings.Join(employmentTypes, ", ")
		}
		updates["employment_type"] = *in.EmploymentType
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Technologies != nil {
		updates["technologies"] = datatypes.JSONSlice[string](cleanTags(*in.Technologies))
	}
	if in.ActiveDays != nil {
		if *in.ActiveDays < 1 || *in.ActiveDays > maxActiveDays {
			errs["active_days"] = "active_days must be between 1 and 365"
		}
		updates["active_days"] = *in.ActiveDays
	}
	if len(errs) > 0 {
		return nil, validationError(errs)
	}
	if len(updates) == 0 {
		return nil, badRequest("no fields to update")
	}
	// the cached embedding is built from these, see jobEmbeddingText
	if in.Title != nil || in.Description != nil || in.Technologies != nil {
		updates["embedding"] = nil
	}

	if err := uc.jobs.UpdateJobFields(ctx, id, updates); err != nil {
		return nil, lookupError("job", err)
	}
	return uc.Get(ctx, userID, id)
}

func (uc *JobUsecase) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) (*model.Job, error) {
	if !model.IsValidJobStatus(status) {
		return nil, validationError(map[string]string{"status": "status must be draft, published or closed"})
	}
	if _, err := uc.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := uc.jobs.UpdateJobFields(ctx, id, map[string]any{"status": status}); err != nil {
		return nil, lookupError("job", err)
	}
	return uc.Get(ctx, userID, id)
}

func (uc *JobUsecase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := uc.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := uc.jobs.DeleteJob(ctx, id); err != nil {
		return lookupError("job", err)
	}
	return nil
}

func (uc *JobUsecase) IncrementApplicants(ctx context.Context, userID, id uuid.UUID) (int, error) {
	if _, err := uc.Get(ctx, userID, id); err != nil {
		return 0, err
	}
	n, err := uc.jobs.IncrementApplicants(ctx, id)
	if err != nil {
		return 0, lookupError("job", err)
	}
	return n, nil
}

func (uc *JobUsecase) DecrementApplicants(ctx context.Context, userID, id uuid.UUID) (int, error) {
	if _, err := uc.Get(ctx, userID, id); err != nil {
		return 0, err
	}
	n, err := uc.jobs.DecrementApplicants(ctx, id)
	if err != nil {
		return 0, lookupError("job", err)
	}
	return n, nil
}

// Matches ranks the owner's analyzed candidates by similarity to the job.
// The job embedding is computed once and cached on the row.
func (uc *JobUsecase) Matches(ctx context.Context, userID, id uuid.UUID, limit int) ([]model.Candidate, error) {
	job, err := uc.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var vec pgvector.Vector
	if job.Embedding != nil {
		vec = *job.Embedding
	} else {
		values, err := uc.embeddings.GenerateEmbedding(ctx, jobEmbeddingText(job))
		if err != nil {
			return nil, newError(502, "failed to embed job description", err)
		}
		vec = pgvector.NewVector(values)
		if err := uc.jobs.SetJobEmbedding(ctx, job.ID, vec); err != nil {
			logger.Warnw("Failed to cache job embedding", logger.FieldJobID, job.ID, logger.FieldError, err)
		}
	}

	candidates, err := uc.candidates.SearchCandidates(ctx, userID, vec, limit)
	if err != nil {
		return nil, internal("failed to search candidates", err)
	}
	return candidates, nil
}

// IsExpired is display-only; active_days is not enforced anywhere.
func IsExpired(job *model.Job, now time.Time) bool {
	return now.After(job.ExpiresAt())
}

func jobEmbeddingText(job *model.Job) string {
	return job.Title + "\n" + strings.Join(job.Technologies, ", ") + "\n" + job.Description
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func cleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
