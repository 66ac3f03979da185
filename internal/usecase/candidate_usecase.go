package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/logger"
	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/fadilmartias/klarus-hr/internal/service"
	"github.com/fadilmartias/klarus-hr/internal/util"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/tidwall/gjson"
)

const atsSystemPrompt = "You are an ATS (applicant tracking system) that extracts structured data from CVs and rates candidates objectively."

type ApplyInput struct {
	Name  string
	Email string
	Phone string
	CV    UploadFile
}

type UpdateCandidateInput struct {
	Name       *string   `json:"name"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"phone"`
	Location   *string   `json:"location"`
	Skills     *[]string `json:"skills"`
	Experience *string   `json:"experience"`
	Education  *string   `json:"education"`
	JobID      *string   `json:"job_id"`
}

// WebhookCandidateInput is what external automation posts to the candidate webhook.
type WebhookCandidateInput struct {
	UserID     uuid.UUID  `json:"user_id"`
	JobID      *uuid.UUID `json:"job_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Location   string     `json:"location"`
	Skills     []string   `json:"skills"`
	Experience string     `json:"experience"`
	Education  string     `json:"education"`
	CVURL      string     `json:"cv_url"`
	CVText     string     `json:"cv_text"`
}

type CandidateUsecase struct {
	candidates CandidateStore
	jobs       JobStore
	storage    service.StorageServiceInterface
	llm        service.LLMServiceInterface
	embeddings service.EmbeddingServiceInterface
	extract    TextExtractor
	now        func() time.Time
}

func NewCandidateUsecase(
	candidates CandidateStore,
	jobs JobStore,
	storage service.StorageServiceInterface,
	llm service.LLMServiceInterface,
	embeddings service.EmbeddingServiceInterface,
	extract TextExtractor,
) *CandidateUsecase {
	if extract == nil {
		extract = util.ExtractCVText
	}
	return &CandidateUsecase{
		candidates: candidates,
		jobs:       jobs,
		storage:    storage,
		llm:        llm,
		embeddings: embeddings,
		extract:    extract,
		now:        time.Now,
	}
}

// Apply handles a public application for a published job.
func (uc *CandidateUsecase) Apply(ctx context.Context, jobID uuid.UUID, in ApplyInput) (*model.Candidate, error) {
	if err := util.ValidateCVFile(in.CV.Filename, in.CV.Size, in.CV.ContentType); err != nil {
		return nil, uploadError(err)
	}
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if !strings.Contains(in.Email, "@") {
		fields["email"] = "a valid email is required"
	}
	if len(fields) > 0 {
		return nil, validationError(fields)
	}

	job, err := uc.jobs.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, lookupError("job", err)
	}
	if job.Status != model.JobStatusPublished {
		return nil, notFound("job")
	}

	c, err := uc.store(ctx, in.CV)
	if err != nil {
		return nil, err
	}
	c.UserID = job.UserID
	c.JobID = &job.ID
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Source = model.CandidateSourceApplication

	if err := uc.candidates.CreateCandidate(ctx, c); err != nil {
		return nil, internal("failed to save application", err)
	}
	if _, err := uc.jobs.IncrementApplicants(ctx, job.ID); err != nil {
		logger.Errorw("Failed to increment applicant count", logger.FieldJobID, job.ID, logger.FieldError, err)
	}
	return c, nil
}

// BulkUpload validates every file first; one bad file rejects the batch
// before anything is stored.
func (uc *CandidateUsecase) BulkUpload(ctx context.Context, userID uuid.UUID, jobID *uuid.UUID, files []UploadFile) ([]model.Candidate, error) {
	if len(files) == 0 {
		return nil, badRequest("at least one file is required")
	}
	invalid := map[string]string{}
	for _, f := range files {
		if err := util.ValidateCVFile(f.Filename, f.Size, f.ContentType); err != nil {
			invalid[f.Filename] = err.Error()
		}
	}
	if len(invalid) > 0 {
		return nil, &Error{Code: http.StatusBadRequest, Message: "some files were rejected", Fields: invalid}
	}

	if jobID != nil {
		job, err := uc.jobs.FindJobByID(ctx, *jobID)
		if err != nil {
			return nil, lookupError("job", err)
		}
		if job.UserID != userID {
			return nil, forbidden()
		}
	}

	out := make([]model.Candidate, 0, len(files))
	var stored []string
	for _, f := range files {
		c, err := uc.store(ctx, f)
		if err != nil {
			uc.discard(ctx, out, stored)
			return nil, err
		}
		stored = append(stored, c.CVURL)
		c.UserID = userID
		c.JobID = jobID
		c.Name = strings.TrimSuffix(f.Filename, filepath.Ext(f.Filename))
		c.Source = model.CandidateSourceUpload
		if err := uc.candidates.CreateCandidate(ctx, c); err != nil {
			uc.discard(ctx, out, stored)
			return nil, internal("failed to save candidate", err)
		}
		out = append(out, *c)
	}
	logger.Infow("Bulk CV upload stored", logger.FieldUserID, userID, "count", len(out))
	return out, nil
}

// discard undoes a partially stored batch so a failed bulk upload leaves
// nothing behind.
func (uc *CandidateUsecase) discard(ctx context.Context, created []model.Candidate, urls []string) {
	ctx = context.WithoutCancel(ctx)
	for _, c := range created {
		if err := uc.candidates.DeleteCandidate(ctx, c.ID); err != nil {
			logger.Warnw("Failed to discard candidate from failed batch", logger.FieldCandidate, c.ID, logger.FieldError, err)
		}
	}
	for _, url := range urls {
		if err := uc.storage.Remove(ctx, url); err != nil {
			logger.Warnw("Failed to remove CV from failed batch", "url", url, logger.FieldError, err)
		}
	}
}

// store reads the file, uploads it to the cvs bucket and extracts its text.
// Extraction failures are not fatal; the candidate simply has no CV text.
func (uc *CandidateUsecase) store(ctx context.Context, f UploadFile) (*model.Candidate, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, internal("failed to read "+f.Filename, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, util.MaxCVSize+1))
	if err != nil {
		return nil, internal("failed to read "+f.Filename, err)
	}
	if len(data) > util.MaxCVSize {
		return nil, badRequest(fmt.Sprintf("%s exceeds maximum limit of %dMB", f.Filename, util.MaxCVSizeMB))
	}

	url, err := uc.storage.Upload(ctx, service.BucketCVs, f.Filename, bytes.NewReader(data))
	if err != nil {
		return nil, internal("failed to store "+f.Filename, err)
	}

	text, err := uc.extract(f.Filename, data)
	if err != nil {
		logger.Warnw("CV text extraction failed", logger.FieldCandidate, f.Filename, logger.FieldError, err)
	}
	return &model.Candidate{CVURL: url, CVText: text}, nil
}

func (uc *CandidateUsecase) List(ctx context.Context, userID uuid.UUID, jobID *uuid.UUID, page, pageSize int) ([]model.Candidate, int64, int, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	items, total, err := uc.candidates.ListCandidates(ctx, userID, jobID, page, pageSize)
	if err != nil {
		return nil, 0, page, pageSize, internal("failed to list candidates", err)
	}
	return items, total, page, pageSize, nil
}

func (uc *CandidateUsecase) Get(ctx context.Context, userID, id uuid.UUID) (*model.Candidate, error) {
	c, err := uc.candidates.FindCandidateByID(ctx, id)
	if err != nil {
		return nil, lookupError("candidate", err)
	}
	if c.UserID != userID {
		return nil, forbidden()
	}
	return c, nil
}

func (uc *CandidateUsecase) Update(ctx context.Context, userID, id uuid.UUID, in UpdateCandidateInput) (*model.Candidate, error) {
	c, err := uc.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	previousJob := c.JobID
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		c.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Location != nil {
		c.Location = *in.Location
	}
	if in.Skills != nil {
		c.Skills = cleanTags(*in.Skills)
	}
	if in.Experience != nil {
		c.Experience = *in.Experience
	}
	if in.Education != nil {
		c.Education = *in.Education
	}
	if in.JobID != nil {
		if *in.JobID == "" {
			c.JobID = nil
		} else {
			jobID, err := uuid.Parse(*in.JobID)
			if err != nil {
				return nil, validationError(map[string]string{"job_id": "job_id must be a uuid"})
			}
			job, err := uc.jobs.FindJobByID(ctx, jobID)
			if err != nil {
				return nil, lookupError("job", err)
			}
			if job.UserID != userID {
				return nil, forbidden()
			}
			c.JobID = &jobID
		}
	}
	if err := uc.candidates.UpdateCandidate(ctx, c); err != nil {
		return nil, internal("failed to update candidate", err)
	}
	if c.Source == model.CandidateSourceApplication && !sameJob(previousJob, c.JobID) {
		uc.moveApplicant(ctx, previousJob, c.JobID)
	}
	return c, nil
}

// moveApplicant keeps applicant counters in step when an application is
// reassigned.
func (uc *CandidateUsecase) moveApplicant(ctx context.Context, from, to *uuid.UUID) {
	if from != nil {
		if _, err := uc.jobs.DecrementApplicants(ctx, *from); err != nil {
			logger.Warnw("Failed to decrement applicant count", logger.FieldJobID, *from, logger.FieldError, err)
		}
	}
	if to != nil {
		if _, err := uc.jobs.IncrementApplicants(ctx, *to); err != nil {
			logger.Warnw("Failed to increment applicant count", logger.FieldJobID, *to, logger.FieldError, err)
		}
	}
}

func sameJob(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Delete removes the candidate; applications also give their slot back on the job counter.
func (uc *CandidateUsecase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	c, err := uc.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := uc.candidates.DeleteCandidate(ctx, id); err != nil {
		return lookupError("candidate", err)
	}
	if c.Source == model.CandidateSourceApplication && c.JobID != nil {
		if _, err := uc.jobs.DecrementApplicants(ctx, *c.JobID); err != nil {
			logger.Warnw("Failed to decrement applicant count", logger.FieldJobID, *c.JobID, logger.FieldError, err)
		}
	}
	return nil
}

// Analyze runs the ATS extraction on the stored CV text. A reply without a
// JSON object is a hard failure and nothing is written.
func (uc *CandidateUsecase) Analyze(ctx context.Context, userID, id uuid.UUID) (*model.Candidate, error) {
	c, err := uc.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.CVText) == "" {
		return nil, &Error{Code: http.StatusUnprocessableEntity, Message: "candidate has no CV text to analyze"}
	}

	var jobContext string
	if c.JobID != nil {
		if job, err := uc.jobs.FindJobByID(ctx, *c.JobID); err == nil {
			jobContext = fmt.Sprintf("\nRate the candidate against this job:\nTitle: %s\nTechnologies: %s\nDescription:\n%s\n",
				job.Title, strings.Join(job.Technologies, ", "), job.Description)
		}
	}

	prompt := fmt.Sprintf(`Extract the candidate profile from the CV below and rate the candidate.
Return STRICTLY a JSON object with these keys and nothing else:
{"name": string, "email": string, "phone": string, "location": string, "skills": [string],
 "experience": string, "education": string, "rating": number between 1 and 5,
 "summary": string, "content_risk": string describing any inconsistencies or exaggerations}
%s
CV:
%s
`, jobContext, c.CVText)

	reply, err := uc.llm.Complete(ctx, service.ChatRequest{System: atsSystemPrompt, Prompt: prompt, Temperature: 0.2})
	if err != nil {
		return nil, newError(http.StatusBadGateway, "CV analysis failed", err)
	}
	raw, ok := util.ExtractJSONObject(reply)
	if !ok {
		return nil, &Error{Code: http.StatusUnprocessableEntity, Message: "AI response did not contain a JSON object", Err: errors.New("no json object in reply")}
	}

	applyAnalysis(c, gjson.Parse(raw))
	now := uc.now()
	c.AnalyzedAt = &now

	if values, err := uc.embeddings.GenerateEmbedding(ctx, candidateEmbeddingText(c)); err != nil {
		logger.Warnw("Candidate embedding failed", logger.FieldCandidate, c.ID, logger.FieldError, err)
	} else {
		vec := pgvector.NewVector(values)
		c.Embedding = &vec
	}

	if err := uc.candidates.UpdateCandidate(ctx, c); err != nil {
		return nil, internal("failed to save analysis", err)
	}
	return c, nil
}

// IngestWebhook stores a candidate pushed by external automation.
func (uc *CandidateUsecase) IngestWebhook(ctx context.Context, in WebhookCandidateInput) (*model.Candidate, error) {
	fields := map[string]string{}
	if in.UserID == uuid.Nil {
		fields["user_id"] = "user_id is required"
	}
	if strings.TrimSpace(in.Name) == "" && strings.TrimSpace(in.Email) == "" {
		fields["name"] = "name or email is required"
	}
	if len(fields) > 0 {
		return nil, validationError(fields)
	}
	if in.JobID != nil {
		job, err := uc.jobs.FindJobByID(ctx, *in.JobID)
		if err != nil {
			return nil, lookupError("job", err)
		}
		if job.UserID != in.UserID {
			return nil, forbidden()
		}
	}

	c := &model.Candidate{
		UserID:     in.UserID,
		JobID:      in.JobID,
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Location:   in.Location,
		Skills:     cleanTags(in.Skills),
		Experience: in.Experience,
		Education:  in.Education,
		CVURL:      in.CVURL,
		CVText:     in.CVText,
		Source:     model.CandidateSourceWebhook,
	}
	if err := uc.candidates.CreateCandidate(ctx, c); err != nil {
		return nil, internal("failed to save candidate", err)
	}
	return c, nil
}

func applyAnalysis(c *model.Candidate, res gjson.Result) {
	setIfPresent := func(dst *string, key string) {
		if v := strings.TrimSpace(res.Get(key).String()); v != "" {
			*dst = v
		}
	}
	setIfPresent(&c.Name, "name")
	setIfPresent(&c.Email, "email")
	setIfPresent(&c.Phone, "phone")
	setIfPresent(&c.Location, "location")
	setIfPresent(&c.Experience, "experience")
	setIfPresent(&c.Education, "education")
	setIfPresent(&c.AISummary, "summary")
	setIfPresent(&c.ContentRisk, "content_risk")

	if skills := res.Get("skills"); skills.IsArray() {
		var out []string
		for _, s := range skills.Array() {
			out = append(out, s.String())
		}
		c.Skills = cleanTags(out)
	}
	if r := res.Get("rating"); r.Exists() {
		rating := r.Float()
		if rating < 0 {
			rating = 0
		}
		if rating > 5 {
			rating = 5
		}
		c.AIRating = &rating
	}
}

func candidateEmbeddingText(c *model.Candidate) string {
	return strings.Join([]string{c.Name, strings.Join(c.Skills, ", "), c.Experience, c.Education, c.AISummary}, "\n")
}

func uploadError(err error) *Error {
	var ue *util.UploadError
	if errors.As(err, &ue) {
		return &Error{Code: http.StatusBadRequest, Message: ue.Message, Fields: map[string]string{ue.Filename: ue.Message}}
	}
	return badRequest(err.Error())
}
