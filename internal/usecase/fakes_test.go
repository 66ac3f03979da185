package usecase

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/fadilmartias/klarus-hr/internal/repository"
	"github.com/fadilmartias/klarus-hr/internal/service"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type fakeJobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*model.Job
}

func newFakeJobs(jobs ...*model.Job) *fakeJobs {
	f := &fakeJobs{jobs: map[uuid.UUID]*model.Job{}}
	for _, j := range jobs {
		f.jobs[j.ID] = j
	}
	return f
}

func (f *fakeJobs) CreateJob(ctx context.Context, job *model.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.ID = uuid.New()
	job.CreatedAt = time.Now()
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobs) UpdateJobFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if v, ok := fields["status"].(string); ok {
		j.Status = v
	}
	if v, ok := fields["title"].(string); ok {
		j.Title = v
	}
	if v, ok := fields["active_days"].(int); ok {
		j.ActiveDays = v
	}
	if v, ok := fields["location"].(string); ok {
		j.Location = v
	}
	if v, ok := fields["technologies"].(datatypes.JSONSlice[string]); ok {
		j.Technologies = v
	}
	if v, ok := fields["embedding"]; ok && v == nil {
		j.Embedding = nil
	}
	return nil
}

func (f *fakeJobs) FindJobByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobs) ListJobs(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]model.Job, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Job
	for _, j := range f.jobs {
		if j.UserID == userID {
			out = append(out, *j)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeJobs) DeleteJob(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeJobs) IncrementApplicants(ctx context.Context, id uuid.UUID) (int, error) {
	return f.adjust(id, 1)
}

func (f *fakeJobs) DecrementApplicants(ctx context.Context, id uuid.UUID) (int, error) {
	return f.adjust(id, -1)
}

func (f *fakeJobs) adjust(id uuid.UUID, delta int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	j.ApplicantCount = max(0, j.ApplicantCount+delta)
	return j.ApplicantCount, nil
}

func (f *fakeJobs) SetJobEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		j.Embedding = &embedding
	}
	return nil
}

type fakeCandidates struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*model.Candidate
	searched int
}

func newFakeCandidates() *fakeCandidates {
	return &fakeCandidates{items: map[uuid.UUID]*model.Candidate{}}
}

func (f *fakeCandidates) CreateCandidate(ctx context.Context, c *model.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeCandidates) UpdateCandidate(ctx context.Context, c *model.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeCandidates) FindCandidateByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCandidates) ListCandidates(ctx context.Context, userID uuid.UUID, jobID *uuid.UUID, page, pageSize int) ([]model.Candidate, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Candidate
	for _, c := range f.items {
		if c.UserID == userID && (jobID == nil || (c.JobID != nil && *c.JobID == *jobID)) {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeCandidates) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeCandidates) SearchCandidates(ctx context.Context, userID uuid.UUID, embedding pgvector.Vector, topK int) ([]model.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched++
	var out []model.Candidate
	for _, c := range f.items {
		if c.UserID == userID && c.Embedding != nil && len(out) < topK {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeTokens struct {
	mu      sync.Mutex
	tokens  map[uuid.UUID]*model.LinkedInToken
	findErr error
	deletes int
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[uuid.UUID]*model.LinkedInToken{}}
}

func (f *fakeTokens) FindTokenByUserID(ctx context.Context, userID uuid.UUID) (*model.LinkedInToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) UpsertToken(ctx context.Context, t *model.LinkedInToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tokens[t.UserID] = &cp
	return nil
}

func (f *fakeTokens) DeleteTokenByUserID(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	delete(f.tokens, userID)
	return nil
}

type fakePosts struct {
	mu    sync.Mutex
	posts []*model.PublishedPost
}

func (f *fakePosts) CreatePost(ctx context.Context, p *model.PublishedPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	f.posts = append(f.posts, p)
	return nil
}

func (f *fakePosts) FindPostByIdempotencyKey(ctx context.Context, userID, jobID uuid.UUID, key string) (*model.PublishedPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.UserID == userID && p.JobID == jobID && p.IdempotencyKey != nil && *p.IdempotencyKey == key {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePosts) ListPostsByJob(ctx context.Context, jobID uuid.UUID) ([]model.PublishedPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PublishedPost
	for _, p := range f.posts {
		if p.JobID == jobID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePosts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

type fakeThemes struct {
	mu     sync.Mutex
	themes map[uuid.UUID]*model.Theme
}

func newFakeThemes() *fakeThemes {
	return &fakeThemes{themes: map[uuid.UUID]*model.Theme{}}
}

func (f *fakeThemes) CreateTheme(ctx context.Context, t *model.Theme) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = uuid.New()
	cp := *t
	f.themes[t.ID] = &cp
	return nil
}

func (f *fakeThemes) FindThemeByID(ctx context.Context, id uuid.UUID) (*model.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.themes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeThemes) ListThemes(ctx context.Context, userID uuid.UUID) ([]model.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Theme
	for _, t := range f.themes {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeThemes) DeleteTheme(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.themes, id)
	return nil
}

func (f *fakeThemes) UpdateThemeStatus(ctx context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.themes[id]; ok {
		t.Status = status
	}
	return nil
}

func (f *fakeThemes) SaveSamplePosts(ctx context.Context, themeID uuid.UUID, posts []model.SamplePost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.themes[themeID]; ok {
		t.SamplePosts = posts
		t.Status = model.ThemeStatusCompleted
	}
	return nil
}

type fakeStates struct {
	mu     sync.Mutex
	states map[string]uuid.UUID
}

func newFakeStates() *fakeStates {
	return &fakeStates{states: map[string]uuid.UUID{}}
}

func (f *fakeStates) SaveState(ctx context.Context, state string, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[state] = userID
	return nil
}

func (f *fakeStates) ConsumeState(ctx context.Context, state string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.states[state]
	if !ok {
		return uuid.Nil, service.ErrStateNotFound
	}
	delete(f.states, state)
	return id, nil
}

type fakeOAuth struct {
	exchanges int
	grant     *service.OAuthGrant
}

func (f *fakeOAuth) AuthorizationURL(state string) (string, error) {
	return "https://www.linkedin.com/oauth/v2/authorization?state=" + state, nil
}

func (f *fakeOAuth) Exchange(ctx context.Context, code string) (*service.OAuthGrant, error) {
	f.exchanges++
	return f.grant, nil
}

type fakeLinkedIn struct {
	mu       sync.Mutex
	calls    int
	postID   string
	err      error
	memberID string
}

func (f *fakeLinkedIn) PublishPost(ctx context.Context, accessToken, authorURN, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.postID, nil
}

func (f *fakeLinkedIn) FetchMemberID(ctx context.Context, accessToken string) (string, error) {
	return f.memberID, nil
}

// fakeLLM returns reply for every call, or err when set.
type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeLLM) Complete(ctx context.Context, req service.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, req.Prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeEmbeddings struct {
	calls int
	err   error
}

func (f *fakeEmbeddings) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	uploads []string
	removed []string
	failOn  string
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, filename string, r io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if filename == f.failOn {
		return "", errors.New("disk full")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, bucket+"/"+filename)
	return "http://localhost/storage/" + bucket + "/" + filename, nil
}

func (f *fakeStorage) Remove(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, url)
	return nil
}

type queuedPublish struct {
	task  PublishTask
	delay time.Duration
}

type fakeQueue struct {
	mu        sync.Mutex
	publishes []queuedPublish
	themes    []uuid.UUID
}

func (f *fakeQueue) EnqueuePublish(ctx context.Context, task PublishTask, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishes = append(f.publishes, queuedPublish{task: task, delay: delay})
	return nil
}

func (f *fakeQueue) EnqueueThemeEnrichment(ctx context.Context, themeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.themes = append(f.themes, themeID)
	return nil
}

func rateLimited(seconds string) error {
	h := http.Header{}
	h.Set("Retry-After", seconds)
	return service.ClassifyPublishResponse(http.StatusTooManyRequests, h, []byte(`{"message":"Throttled"}`), time.Now())
}

func uploadOf(name string, size int, contentType string) UploadFile {
	return UploadFile{
		Filename:    name,
		Size:        int64(size),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(strings.Repeat("x", size))), nil
		},
	}
}
