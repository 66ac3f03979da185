package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/usecase"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskLinkedInPublish      = "linkedin:publish"
	TaskThemeGenerateSamples = "theme:generate_samples"
)

type themePayload struct {
	ThemeID uuid.UUID `json:"theme_id"`
}

// Queue enqueues background tasks on asynq. It implements usecase.TaskQueue.
type Queue struct {
	client *asynq.Client
}

func NewQueue(redisURL string) (*Queue, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	return &Queue{client: asynq.NewClient(opt)}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

// EnqueuePublish schedules a publish attempt after delay. The task id is
// derived from user, job and idempotency key, so a publish already waiting in
// the queue is not scheduled twice.
func (q *Queue) EnqueuePublish(ctx context.Context, task usecase.PublishTask, delay time.Duration) error {
	t, err := newPublishTask(task)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, t,
		asynq.TaskID(publishTaskID(task)),
		asynq.ProcessIn(delay),
		asynq.MaxRetry(usecase.MaxPublishAttempts-1),
		asynq.Timeout(2*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func (q *Queue) EnqueueThemeEnrichment(ctx context.Context, themeID uuid.UUID) error {
	payload, err := json.Marshal(themePayload{ThemeID: themeID})
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx,
		asynq.NewTask(TaskThemeGenerateSamples, payload),
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	return err
}

func newPublishTask(task usecase.PublishTask) (*asynq.Task, error) {
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLinkedInPublish, payload), nil
}

func publishTaskID(task usecase.PublishTask) string {
	return TaskLinkedInPublish + ":" + task.UserID.String() + ":" + task.JobID.String() + ":" + task.Key
}
