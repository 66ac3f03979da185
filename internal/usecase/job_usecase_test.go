package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJobInput() CreateJobInput {
	return CreateJobInput{
		Title:          "Platform Engineer",
		Location:       "Jakarta",
		WorkplaceType:  "hybrid",
		EmploymentType: "full-time",
		Description:    "Own our Kubernetes platform.",
		Technologies:   []string{"Go", "Kubernetes", "go"},
	}
}

func TestCreateJobDefaults(t *testing.T) {
	uc := NewJobUsecase(newFakeJobs(), newFakeCandidates(), &fakeEmbeddings{})

	job, err := uc.Create(context.Background(), uuid.New(), validJobInput())
	require.NoError(t, err)

	assert.Equal(t, model.DefaultJobActiveDays, job.ActiveDays)
	assert.Equal(t, model.JobStatusDraft, job.Status)
	assert.Equal(t, []string{"Go", "Kubernetes"}, []string(job.Technologies))
	assert.Zero(t, job.ApplicantCount)
}

func TestCreateJobValidation(t *testing.T) {
	uc := NewJobUsecase(newFakeJobs(), newFakeCandidates(), &fakeEmbeddings{})
	in := validJobInput()
	in.Title = " "
	in.WorkplaceType = "moon"
	in.ActiveDays = 400

	_, err := uc.Create(context.Background(), uuid.New(), in)

	uerr := requireUsecaseError(t, err)
	assert.Equal(t, http.StatusBadRequest, uerr.Code)
	assert.Contains(t, uerr.Fields, "title")
	assert.Contains(t, uerr.Fields, "workplace_type")
	assert.Contains(t, uerr.Fields, "active_days")
}

func TestGetPublicOnlyPublished(t *testing.T) {
	draft := &model.Job{ID: uuid.New(), Status: model.JobStatusDraft}
	live := &model.Job{ID: uuid.New(), Status: model.JobStatusPublished}
	uc := NewJobUsecase(newFakeJobs(draft, live), newFakeCandidates(), &fakeEmbeddings{})

	_, err := uc.GetPublic(context.Background(), draft.ID)
	assert.Equal(t, http.StatusNotFound, requireUsecaseError(t, err).Code)

	got, err := uc.GetPublic(context.Background(), live.ID)
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
}

func TestApplicantCounterNeverNegative(t *testing.T) {
	owner := uuid.New()
	job := &model.Job{ID: uuid.New(), UserID: owner}
	uc := NewJobUsecase(newFakeJobs(job), newFakeCandidates(), &fakeEmbeddings{})

	n, err := uc.IncrementApplicants(context.Background(), owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for range 3 {
		n, err = uc.DecrementApplicants(context.Background(), owner, job.ID)
		require.NoError(t, err)
	}
	assert.Zero(t, n)

	_, err = uc.IncrementApplicants(context.Background(), uuid.New(), job.ID)
	assert.Equal(t, http.StatusForbidden, requireUsecaseError(t, err).Code)
}

func TestUpdateStatus(t *testing.T) {
	owner := uuid.New()
	job := &model.Job{ID: uuid.New(), UserID: owner, Status: model.JobStatusDraft}
	uc := NewJobUsecase(newFakeJobs(job), newFakeCandidates(), &fakeEmbeddings{})

	_, err := uc.UpdateStatus(context.Background(), owner, job.ID, "archived")
	assert.Equal(t, http.StatusBadRequest, requireUsecaseError(t, err).Code)

	got, err := uc.UpdateStatus(context.Background(), owner, job.ID, model.JobStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPublished, got.Status)
}

func TestMatchesCachesJobEmbedding(t *testing.T) {
	owner := uuid.New()
	job := &model.Job{ID: uuid.New(), UserID: owner, Title: "ML Engineer"}
	jobs := newFakeJobs(job)
	candidates := newFakeCandidates()
	embeddings := &fakeEmbeddings{}
	uc := NewJobUsecase(jobs, candidates, embeddings)

	_, err := uc.Matches(context.Background(), owner, job.ID, 5)
	require.NoError(t, err)
	_, err = uc.Matches(context.Background(), owner, job.ID, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, embeddings.calls)
	assert.Equal(t, 2, candidates.searched)
}

func TestUpdateResetsEmbeddingWhenMatchTextChanges(t *testing.T) {
	owner := uuid.New()
	job := &model.Job{ID: uuid.New(), UserID: owner, Title: "ML Engineer"}
	jobs := newFakeJobs(job)
	embeddings := &fakeEmbeddings{}
	uc := NewJobUsecase(jobs, newFakeCandidates(), embeddings)
	ctx := context.Background()

	_, err := uc.Matches(ctx, owner, job.ID, 5)
	require.NoError(t, err)

	location := "Bandung"
	_, err = uc.Update(ctx, owner, job.ID, UpdateJobInput{Location: &location})
	require.NoError(t, err)
	_, err = uc.Matches(ctx, owner, job.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, embeddings.calls)

	title := "Senior ML Engineer"
	_, err = uc.Update(ctx, owner, job.ID, UpdateJobInput{Title: &title})
	require.NoError(t, err)
	_, err = uc.Matches(ctx, owner, job.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, embeddings.calls)

	techs := []string{"PyTorch"}
	_, err = uc.Update(ctx, owner, job.ID, UpdateJobInput{Technologies: &techs})
	require.NoError(t, err)
	_, err = uc.Matches(ctx, owner, job.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, embeddings.calls)
}

func TestIsExpired(t *testing.T) {
	job := &model.Job{CreatedAt: fixedNow, ActiveDays: 30}
	assert.False(t, IsExpired(job, fixedNow.Add(29*24*time.Hour)))
	assert.True(t, IsExpired(job, fixedNow.Add(31*24*time.Hour)))
}
