package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/logger"
	"github.com/fadilmartias/klarus-hr/internal/usecase"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type Publisher interface {
	PublishQueued(ctx context.Context, task usecase.PublishTask) (*usecase.PublishResult, error)
}

type ThemeEnricher interface {
	Enrich(ctx context.Context, themeID uuid.UUID) error
}

// asynqLoggerAdapter routes asynq's own logs through zap.
type asynqLoggerAdapter struct {
	logger *zap.SugaredLogger
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(args...)
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(args...)
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(args...)
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(args...)
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(args...)
	panic(fmt.Sprint(args...))
}

// Start runs the worker in the background and returns a stop function.
func Start(redisURL string, publisher Publisher, themes ThemeEnricher) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     5,
		ShutdownTimeout: 30 * time.Second,
		RetryDelayFunc:  retryDelay,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleTaskError),
		Logger:          &asynqLoggerAdapter{logger: logger.Logger.Named("asynq")},
	})

	if err := srv.Start(NewMux(publisher, themes)); err != nil {
		return nil, errors.Wrap(err, "start worker")
	}
	logger.Infow("Worker started", "concurrency", 5)
	return srv.Shutdown, nil
}

func NewMux(publisher Publisher, themes ThemeEnricher) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskLinkedInPublish, handlePublish(publisher))
	mux.HandleFunc(TaskThemeGenerateSamples, handleThemeSamples(themes))
	return mux
}

// handlePublish runs one queued publish attempt. Only failures the usecase
// marks retryable go back to the queue.
func handlePublish(publisher Publisher) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload usecase.PublishTask
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return errors.Wrap(asynq.SkipRetry, "invalid payload")
		}

		logger.Infow("Processing linkedin:publish task", logger.FieldJobID, payload.JobID, logger.FieldUserID, payload.UserID)

		res, err := publisher.PublishQueued(ctx, payload)
		if err != nil {
			var uerr *usecase.Error
			if errors.As(err, &uerr) && uerr.Retryable {
				return err
			}
			return errors.Wrapf(asynq.SkipRetry, "publish job %s: %v", payload.JobID, err)
		}

		logger.Infow("Queued LinkedIn publish completed",
			logger.FieldJobID, payload.JobID,
			logger.FieldPostID, res.Post.LinkedInPostID,
			"duplicate", res.Duplicate,
		)
		return nil
	}
}

func handleThemeSamples(themes ThemeEnricher) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload themePayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return errors.Wrap(asynq.SkipRetry, "invalid payload")
		}

		if err := themes.Enrich(ctx, payload.ThemeID); err != nil {
			var uerr *usecase.Error
			// a bad model reply will not improve on retry
			if errors.As(err, &uerr) && uerr.Code < 500 {
				return errors.Wrapf(asynq.SkipRetry, "theme %s: %v", payload.ThemeID, err)
			}
			return err
		}
		return nil
	}
}

// retryDelay honors the vendor's retry hint when the failure carries one.
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	var uerr *usecase.Error
	if errors.As(err, &uerr) && uerr.RetryAfter > 0 {
		return time.Duration(uerr.RetryAfter) * time.Second
	}
	return asynq.DefaultRetryDelayFunc(n, err, task)
}

func handleTaskError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	logger.Errorw("Task execution failed",
		logger.FieldTaskType, task.Type(),
		logger.FieldError, err,
		"retry_count", retried,
		"max_retry", maxRetry,
	)

	if retried >= maxRetry || errors.Is(err, asynq.SkipRetry) {
		logger.Errorw("Task moved to dead letter queue",
			logger.FieldTaskType, task.Type(),
			"payload", string(task.Payload()),
		)
	}
}
