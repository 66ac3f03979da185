package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pdfType = "application/pdf"
	sixMB   = 6 * 1024 * 1024
)

type candidateFixture struct {
	uc         *CandidateUsecase
	userID     uuid.UUID
	job        *model.Job
	jobs       *fakeJobs
	candidates *fakeCandidates
	storage    *fakeStorage
	llm        *fakeLLM
	embeddings *fakeEmbeddings
}

func newCandidateFixture(t *testing.T) *candidateFixture {
	t.Helper()
	userID := uuid.New()
	job := &model.Job{ID: uuid.New(), UserID: userID, Title: "Data Engineer", Status: model.JobStatusPublished}
	f := &candidateFixture{
		userID:     userID,
		job:        job,
		jobs:       newFakeJobs(job),
		candidates: newFakeCandidates(),
		storage:    &fakeStorage{},
		llm:        &fakeLLM{},
		embeddings: &fakeEmbeddings{},
	}
	extract := func(filename string, data []byte) (string, error) {
		return "Jane Doe, Go developer", nil
	}
	f.uc = NewCandidateUsecase(f.candidates, f.jobs, f.storage, f.llm, f.embeddings, extract)
	f.uc.now = func() time.Time { return fixedNow }
	return f
}

func TestApplyRejectsOversizedCVBeforeStorage(t *testing.T) {
	f := newCandidateFixture(t)

	_, err := f.uc.Apply(context.Background(), f.job.ID, ApplyInput{
		Name:  "Jane",
		Email: "jane@example.com",
		CV:    uploadOf("resume.pdf", sixMB, pdfType),
	})

	uerr := requireUsecaseError(t, err)
	assert.Equal(t, http.StatusBadRequest, uerr.Code)
	assert.Contains(t, uerr.Message, "exceeds maximum limit of 5MB")
	assert.Empty(t, f.storage.uploads)
	assert.Empty(t, f.candidates.items)
}

func TestApplyStoresCandidateAndCountsApplicant(t *testing.T) {
	f := newCandidateFixture(t)

	c, err := f.uc.Apply(context.Background(), f.job.ID, ApplyInput{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		CV:    uploadOf("resume.pdf", 2048, pdfType),
	})
	require.NoError(t, err)

	assert.Equal(t, model.CandidateSourceApplication, c.Source)
	assert.Equal(t, f.userID, c.UserID)
	assert.Equal(t, "Jane Doe, Go developer", c.CVText)
	assert.Equal(t, []string{"cvs/resume.pdf"}, f.storage.uploads)

	job, err := f.jobs.FindJobByID(context.Background(), f.job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, job.ApplicantCount)
}

func TestApplyToDraftJob(t *testing.T) {
	f := newCandidateFixture(t)
	f.jobs.jobs[f.job.ID].Status = model.JobStatusDraft

	_, err := f.uc.Apply(context.Background(), f.job.ID, ApplyInput{
		Name:  "Jane",
		Email: "jane@example.com",
		CV:    uploadOf("resume.pdf", 2048, pdfType),
	})

	assert.Equal(t, http.StatusNotFound, requireUsecaseError(t, err).Code)
	assert.Empty(t, f.storage.uploads)
}

func TestBulkUploadRejectsWholeBatch(t *testing.T) {
	f := newCandidateFixture(t)

	_, err := f.uc.BulkUpload(context.Background(), f.userID, nil, []UploadFile{
		uploadOf("a.pdf", 1024, pdfType),
		uploadOf("b.pdf", sixMB, pdfType),
		uploadOf("c.txt", 1024, "text/plain"),
	})

	uerr := requireUsecaseError(t, err)
	assert.Equal(t, http.StatusBadRequest, uerr.Code)
	assert.Equal(t, "b.pdf exceeds maximum limit of 5MB", uerr.Fields["b.pdf"])
	assert.Contains(t, uerr.Fields, "c.txt")
	assert.NotContains(t, uerr.Fields, "a.pdf")
	assert.Empty(t, f.storage.uploads)
	assert.Empty(t, f.candidates.items)
}

func TestBulkUploadStoresEachFile(t *testing.T) {
	f := newCandidateFixture(t)

	out, err := f.uc.BulkUpload(context.Background(), f.userID, &f.job.ID, []UploadFile{
		uploadOf("alice.pdf", 1024, pdfType),
		uploadOf("bob.docx", 1024, "application/octet-stream"),
	})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "alice", out[0].Name)
	assert.Equal(t, model.CandidateSourceUpload, out[1].Source)
	assert.Len(t, f.storage.uploads, 2)
}

func TestBulkUploadDiscardsStoredFilesOnFailure(t *testing.T) {
	f := newCandidateFixture(t)
	f.storage.failOn = "carol.pdf"

	_, err := f.uc.BulkUpload(context.Background(), f.userID, &f.job.ID, []UploadFile{
		uploadOf("alice.pdf", 1024, pdfType),
		uploadOf("bob.pdf", 1024, pdfType),
		uploadOf("carol.pdf", 1024, pdfType),
	})

	assert.Equal(t, http.StatusInternalServerError, requireUsecaseError(t, err).Code)
	assert.Empty(t, f.candidates.items)
	assert.ElementsMatch(t, []string{
		"http://localhost/storage/cvs/alice.pdf",
		"http://localhost/storage/cvs/bob.pdf",
	}, f.storage.removed)
}

func TestBulkUploadForeignJob(t *testing.T) {
	f := newCandidateFixture(t)

	_, err := f.uc.BulkUpload(context.Background(), uuid.New(), &f.job.ID, []UploadFile{uploadOf("a.pdf", 1024, pdfType)})

	assert.Equal(t, http.StatusForbidden, requireUsecaseError(t, err).Code)
	assert.Empty(t, f.storage.uploads)
}

func TestAnalyzeParsesReply(t *testing.T) {
	f := newCandidateFixture(t)
	c := &model.Candidate{UserID: f.userID, CVText: "Jane Doe, Go developer", Source: model.CandidateSourceUpload}
	require.NoError(t, f.candidates.CreateCandidate(context.Background(), c))
	f.llm.reply = "Here you go:\n```json\n" +
		`{"name":"Jane Doe","email":"jane@example.com","skills":["Go","SQL"],"rating":4.5,"summary":"Solid backend engineer","content_risk":"none"}` +
		"\n```"

	got, err := f.uc.Analyze(context.Background(), f.userID, c.ID)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, []string{"Go", "SQL"}, []string(got.Skills))
	require.NotNil(t, got.AIRating)
	assert.InDelta(t, 4.5, *got.AIRating, 0.001)
	assert.Equal(t, "Solid backend engineer", got.AISummary)
	assert.NotNil(t, got.Embedding)
	require.NotNil(t, got.AnalyzedAt)
	assert.Equal(t, fixedNow, *got.AnalyzedAt)
}

func TestAnalyzeWithoutJSONWritesNothing(t *testing.T) {
	f := newCandidateFixture(t)
	c := &model.Candidate{UserID: f.userID, CVText: "some cv"}
	require.NoError(t, f.candidates.CreateCandidate(context.Background(), c))
	f.llm.reply = "I could not read this CV."

	_, err := f.uc.Analyze(context.Background(), f.userID, c.ID)

	assert.Equal(t, http.StatusUnprocessableEntity, requireUsecaseError(t, err).Code)
	stored, err := f.candidates.FindCandidateByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AnalyzedAt)
	assert.Zero(t, f.embeddings.calls)
}

func TestAnalyzeKeepsResultWhenEmbeddingFails(t *testing.T) {
	f := newCandidateFixture(t)
	c := &model.Candidate{UserID: f.userID, CVText: "some cv"}
	require.NoError(t, f.candidates.CreateCandidate(context.Background(), c))
	f.llm.reply = `{"name":"Sam","rating":3}`
	f.embeddings.err = errors.New("circuit breaker open")

	got, err := f.uc.Analyze(context.Background(), f.userID, c.ID)
	require.NoError(t, err)

	assert.Equal(t, "Sam", got.Name)
	assert.Nil(t, got.Embedding)
}

func TestDeleteApplicationDecrementsJob(t *testing.T) {
	f := newCandidateFixture(t)
	c, err := f.uc.Apply(context.Background(), f.job.ID, ApplyInput{
		Name:  "Jane",
		Email: "jane@example.com",
		CV:    uploadOf("resume.pdf", 2048, pdfType),
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(context.Background(), f.userID, c.ID))

	job, err := f.jobs.FindJobByID(context.Background(), f.job.ID)
	require.NoError(t, err)
	assert.Zero(t, job.ApplicantCount)
}

func TestUpdateMovesApplicantBetweenJobs(t *testing.T) {
	f := newCandidateFixture(t)
	ctx := context.Background()
	other := &model.Job{ID: uuid.New(), UserID: f.userID, Title: "Analytics Engineer", Status: model.JobStatusPublished}
	f.jobs.jobs[other.ID] = other

	c, err := f.uc.Apply(ctx, f.job.ID, ApplyInput{
		Name:  "Jane",
		Email: "jane@example.com",
		CV:    uploadOf("resume.pdf", 2048, pdfType),
	})
	require.NoError(t, err)

	target := other.ID.String()
	_, err = f.uc.Update(ctx, f.userID, c.ID, UpdateCandidateInput{JobID: &target})
	require.NoError(t, err)

	from, _ := f.jobs.FindJobByID(ctx, f.job.ID)
	to, _ := f.jobs.FindJobByID(ctx, other.ID)
	assert.Zero(t, from.ApplicantCount)
	assert.Equal(t, 1, to.ApplicantCount)

	require.NoError(t, f.uc.Delete(ctx, f.userID, c.ID))
	to, _ = f.jobs.FindJobByID(ctx, other.ID)
	assert.Zero(t, to.ApplicantCount)
}

func TestUpdateUploadedCandidateLeavesCounters(t *testing.T) {
	f := newCandidateFixture(t)
	ctx := context.Background()
	out, err := f.uc.BulkUpload(ctx, f.userID, nil, []UploadFile{uploadOf("alice.pdf", 1024, pdfType)})
	require.NoError(t, err)

	target := f.job.ID.String()
	_, err = f.uc.Update(ctx, f.userID, out[0].ID, UpdateCandidateInput{JobID: &target})
	require.NoError(t, err)

	job, _ := f.jobs.FindJobByID(ctx, f.job.ID)
	assert.Zero(t, job.ApplicantCount)
}

func TestIngestWebhook(t *testing.T) {
	f := newCandidateFixture(t)

	_, err := f.uc.IngestWebhook(context.Background(), WebhookCandidateInput{Name: "No Owner"})
	assert.Equal(t, http.StatusBadRequest, requireUsecaseError(t, err).Code)

	c, err := f.uc.IngestWebhook(context.Background(), WebhookCandidateInput{
		UserID: f.userID,
		JobID:  &f.job.ID,
		Name:   "Jane",
		Skills: []string{"Go", " go ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, model.CandidateSourceWebhook, c.Source)
	assert.Equal(t, []string{"Go"}, []string(c.Skills))
}
