package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/logger"
	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/fadilmartias/klarus-hr/internal/repository"
	"github.com/fadilmartias/klarus-hr/internal/service"
	"github.com/google/uuid"
)

// TokenExpiryBuffer: a token expiring within this window is already treated as invalid.
const TokenExpiryBuffer = time.Hour

// MaxPublishAttempts bounds queued publish retries.
const MaxPublishAttempts = 3

// TokenValid reports whether t can still be used at now.
func TokenValid(t *model.LinkedInToken, now time.Time) bool {
	return t != nil && t.ExpiresAt.After(now.Add(TokenExpiryBuffer))
}

type TokenStatus struct {
	Connected bool       `json:"connected"`
	Valid     bool       `json:"valid"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	MemberID  string     `json:"member_id,omitempty"`
}

type CallbackParams struct {
	Code             string `json:"code" query:"code"`
	State            string `json:"state" query:"state"`
	Error            string `json:"error" query:"error"`
	ErrorDescription string `json:"error_description" query:"error_description"`
}

type PublishRequest struct {
	UserID         uuid.UUID
	JobID          uuid.UUID
	IdempotencyKey string
	QueueRetry     bool
}

type PublishResult struct {
	Post           *model.PublishedPost `json:"post,omitempty"`
	Duplicate      bool                 `json:"duplicate"`
	Queued         bool                 `json:"queued"`
	RetryAfter     int                  `json:"retryAfter,omitempty"`
	IdempotencyKey string               `json:"idempotencyKey,omitempty"`
}

type LinkedInUsecase struct {
	tokens   TokenStore
	posts    PostStore
	jobs     JobStore
	states   service.StateStoreInterface
	oauth    service.OAuthServiceInterface
	linkedin service.LinkedInServiceInterface
	content  *ContentUsecase
	queue    TaskQueue
	now      func() time.Time
}

func NewLinkedInUsecase(
	tokens TokenStore,
	posts PostStore,
	jobs JobStore,
	states service.StateStoreInterface,
	oauth service.OAuthServiceInterface,
	linkedin service.LinkedInServiceInterface,
	content *ContentUsecase,
) *LinkedInUsecase {
	return &LinkedInUsecase{
		tokens:   tokens,
		posts:    posts,
		jobs:     jobs,
		states:   states,
		oauth:    oauth,
		linkedin: linkedin,
		content:  content,
		now:      time.Now,
	}
}

// SetQueue enables queued publish retries.
func (uc *LinkedInUsecase) SetQueue(q TaskQueue) {
	uc.queue = q
}

// Status never fails: a lookup error reads as "not connected".
func (uc *LinkedInUsecase) Status(ctx context.Context, userID uuid.UUID) TokenStatus {
	token, err := uc.tokens.FindTokenByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warnw("LinkedIn token lookup failed", logger.FieldUserID, userID, logger.FieldError, err)
		}
		return TokenStatus{}
	}
	expires := token.ExpiresAt
	return TokenStatus{
		Connected: true,
		Valid:     TokenValid(token, uc.now()),
		ExpiresAt: &expires,
		MemberID:  token.MemberID,
	}
}

// Connect starts a fresh OAuth attempt and returns the vendor authorization URL.
func (uc *LinkedInUsecase) Connect(ctx context.Context, userID uuid.UUID) (string, error) {
	if err := uc.tokens.DeleteTokenByUserID(ctx, userID); err != nil {
		logger.Warnw("Ignoring failure to clear LinkedIn token", logger.FieldUserID, userID, logger.FieldError, err)
	}

	state := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := uc.states.SaveState(ctx, state, userID); err != nil {
		return "", internal("failed to start LinkedIn connection", err)
	}

	authURL, err := uc.oauth.AuthorizationURL(state)
	if err != nil {
		return "", internal("failed to build LinkedIn authorization URL", err)
	}
	return authURL, nil
}

// HandleCallback validates the redirect parameters and, only when they are
// all acceptable, exchanges the code and stores the credential. userID is
// uuid.Nil for the browser redirect, where the state alone identifies the user.
func (uc *LinkedInUsecase) HandleCallback(ctx context.Context, userID uuid.UUID, p CallbackParams) error {
	if p.Error != "" {
		msg := p.ErrorDescription
		if msg == "" {
			msg = p.Error
		}
		return badRequest("LinkedIn authorization failed: " + msg)
	}
	if p.Code == "" {
		return badRequest("missing authorization code")
	}
	if p.State == "" {
		return badRequest("missing state parameter")
	}

	owner, err := uc.states.ConsumeState(ctx, p.State)
	if err != nil {
		if errors.Is(err, service.ErrStateNotFound) {
			return &Error{Code: http.StatusForbidden, Message: "invalid or expired state parameter"}
		}
		return internal("failed to verify state", err)
	}
	if userID != uuid.Nil && owner != userID {
		return &Error{Code: http.StatusForbidden, Message: "invalid or expired state parameter"}
	}

	grant, err := uc.oauth.Exchange(ctx, p.Code)
	if err != nil {
		return newError(http.StatusBadGateway, "failed to exchange LinkedIn authorization code", err)
	}
	memberID, err := uc.linkedin.FetchMemberID(ctx, grant.AccessToken)
	if err != nil {
		return newError(http.StatusBadGateway, "failed to load LinkedIn profile", err)
	}

	token := &model.LinkedInToken{
		UserID:       owner,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		MemberID:     memberID,
		Scope:        grant.Scope,
		ExpiresAt:    grant.ExpiresAt,
	}
	if err := uc.tokens.UpsertToken(ctx, token); err != nil {
		return internal("failed to store LinkedIn credentials", err)
	}

	logger.Infow("LinkedIn connected", logger.FieldUserID, owner, "member_id", memberID)
	return nil
}

// Publish posts a job to the owner's LinkedIn feed. It never waits or
// retries itself; with QueueRetry a retryable failure is handed to the queue.
func (uc *LinkedInUsecase) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	if req.QueueRetry && uc.queue != nil && req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}

	result, err := uc.publish(ctx, req)
	if err == nil {
		result.IdempotencyKey = req.IdempotencyKey
		return result, nil
	}

	var uerr *Error
	if !req.QueueRetry || uc.queue == nil || !errors.As(err, &uerr) || !uerr.Retryable {
		return nil, err
	}

	task := PublishTask{UserID: req.UserID, JobID: req.JobID, Key: req.IdempotencyKey}
	delay := time.Duration(uerr.RetryAfter) * time.Second
	if qerr := uc.queue.EnqueuePublish(ctx, task, delay); qerr != nil {
		logger.Errorw("Failed to queue LinkedIn publish retry", logger.FieldJobID, req.JobID, logger.FieldError, qerr)
		return nil, err
	}
	logger.Infow("LinkedIn publish queued for retry", logger.FieldJobID, req.JobID, logger.FieldRetryIn, uerr.RetryAfter)
	return &PublishResult{Queued: true, RetryAfter: uerr.RetryAfter, IdempotencyKey: req.IdempotencyKey}, nil
}

// Posts lists what was published for one of the user's jobs, newest first.
func (uc *LinkedInUsecase) Posts(ctx context.Context, userID, jobID uuid.UUID) ([]model.PublishedPost, error) {
	job, err := uc.jobs.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, lookupError("job", err)
	}
	if job.UserID != userID {
		return nil, forbidden()
	}
	posts, err := uc.posts.ListPostsByJob(ctx, jobID)
	if err != nil {
		return nil, internal("failed to list published posts", err)
	}
	return posts, nil
}

// PublishQueued runs one queued attempt.
func (uc *LinkedInUsecase) PublishQueued(ctx context.Context, task PublishTask) (*PublishResult, error) {
	return uc.publish(ctx, PublishRequest{UserID: task.UserID, JobID: task.JobID, IdempotencyKey: task.Key})
}

func (uc *LinkedInUsecase) publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	job, err := uc.jobs.FindJobByID(ctx, req.JobID)
	if err != nil {
		return nil, lookupError("job", err)
	}
	if job.UserID != req.UserID {
		return nil, forbidden()
	}

	if req.IdempotencyKey != "" {
		existing, err := uc.posts.FindPostByIdempotencyKey(ctx, job.UserID, job.ID, req.IdempotencyKey)
		if err == nil {
			return &PublishResult{Post: existing, Duplicate: true}, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, internal("failed to check previous publish", err)
		}
	}

	token, err := uc.tokens.FindTokenByUserID(ctx, job.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warnw("LinkedIn token lookup failed", logger.FieldUserID, job.UserID, logger.FieldError, err)
		}
		return nil, &Error{Code: http.StatusBadRequest, Message: "LinkedIn not connected", Reconnect: true}
	}
	if !TokenValid(token, uc.now()) {
		return nil, &Error{Code: http.StatusUnauthorized, Message: "LinkedIn token expired, please reconnect", Reconnect: true}
	}

	text, err := uc.content.GenerateForJob(ctx, JobSeedFromModel(job))
	if err != nil {
		return nil, err
	}

	postID, err := uc.linkedin.PublishPost(ctx, token.AccessToken, token.AuthorURN(), text)
	if err != nil {
		return nil, uc.publishFailure(ctx, job, err)
	}

	post := &model.PublishedPost{
		UserID:         job.UserID,
		JobID:          job.ID,
		LinkedInPostID: postID,
		Content:        text,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		post.IdempotencyKey = &key
	}
	if err := uc.posts.CreatePost(ctx, post); err != nil {
		logger.Errorw("LinkedIn post published but not recorded", logger.FieldJobID, job.ID, logger.FieldPostID, postID, logger.FieldError, err)
		return nil, internal("post published but could not be recorded", err)
	}

	logger.Infow("LinkedIn post published", logger.FieldJobID, job.ID, logger.FieldPostID, postID)
	return &PublishResult{Post: post}, nil
}

func (uc *LinkedInUsecase) publishFailure(ctx context.Context, job *model.Job, err error) error {
	var perr *service.PublishError
	if !errors.As(err, &perr) {
		return internal("failed to publish to LinkedIn", err)
	}

	logger.Warnw("LinkedIn publish rejected",
		logger.FieldJobID, job.ID,
		logger.FieldKind, perr.Kind,
		logger.FieldStatus, perr.StatusCode,
		logger.FieldError, perr.Message,
	)

	switch perr.Kind {
	case service.PublishErrorRevoked:
		if derr := uc.tokens.DeleteTokenByUserID(ctx, job.UserID); derr != nil {
			logger.Errorw("Failed to delete revoked LinkedIn token", logger.FieldUserID, job.UserID, logger.FieldError, derr)
		}
		return &Error{Code: http.StatusUnauthorized, Message: "LinkedIn access was revoked, please reconnect", Reconnect: true, Err: perr}
	case service.PublishErrorRateLimited:
		return &Error{
			Code:       http.StatusTooManyRequests,
			Message:    "LinkedIn rate limit reached, please retry later",
			RetryAfter: perr.RetryAfterSeconds(),
			Retryable:  true,
			Err:        perr,
		}
	case service.PublishErrorTransient:
		return &Error{
			Code:       http.StatusServiceUnavailable,
			Message:    "LinkedIn is temporarily unavailable, please retry later",
			RetryAfter: perr.RetryAfterSeconds(),
			Retryable:  true,
			Err:        perr,
		}
	default:
		return &Error{Code: http.StatusBadRequest, Message: "LinkedIn rejected the post: " + perr.Message, Err: perr}
	}
}
