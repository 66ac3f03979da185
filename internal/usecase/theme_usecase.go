package usecase

import (
	"context"
	"strings"

	"github.com/fadilmartias/klarus-hr/internal/logger"
	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/google/uuid"
)

type CreateThemeInput struct {
	ThemeSeed
	IsCustom bool `json:"is_custom"`
}

type ThemeUsecase struct {
	themes  ThemeStore
	content *ContentUsecase
	queue   TaskQueue
}

func NewThemeUsecase(themes ThemeStore, content *ContentUsecase) *ThemeUsecase {
	return &ThemeUsecase{themes: themes, content: content}
}

// SetQueue moves sample-post generation onto the worker.
func (uc *ThemeUsecase) SetQueue(q TaskQueue) {
	uc.queue = q
}

// Create stores the theme as pending and schedules sample post generation.
func (uc *ThemeUsecase) Create(ctx context.Context, userID uuid.UUID, in CreateThemeInput) (*model.Theme, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationError(map[string]string{"name": "name is required"})
	}

	theme := &model.Theme{
		UserID:               userID,
		Name:                 strings.TrimSpace(in.Name),
		Category:             in.Category,
		Audience:             in.Audience,
		Objectives:           in.Objectives,
		CategoryExplanation:  in.CategoryExplanation,
		AudienceExplanation:  in.AudienceExplanation,
		ObjectiveExplanation: in.ObjectiveExplanation,
		IsCustom:             in.IsCustom,
		Status:               model.ThemeStatusPending,
	}
	if err := uc.themes.CreateTheme(ctx, theme); err != nil {
		return nil, internal("failed to create theme", err)
	}

	if uc.queue != nil {
		err := uc.queue.EnqueueThemeEnrichment(ctx, theme.ID)
		if err == nil {
			return theme, nil
		}
		logger.Warnw("Failed to queue theme enrichment, running inline", logger.FieldThemeID, theme.ID, logger.FieldError, err)
	}

	go func(id uuid.UUID) {
		if err := uc.Enrich(context.Background(), id); err != nil {
			logger.Errorw("Theme enrichment failed", logger.FieldThemeID, id, logger.FieldError, err)
		}
	}(theme.ID)
	return theme, nil
}

// Enrich generates the three sample posts. Any failure leaves the theme marked failed.
func (uc *ThemeUsecase) Enrich(ctx context.Context, themeID uuid.UUID) error {
	theme, err := uc.themes.FindThemeByID(ctx, themeID)
	if err != nil {
		return lookupError("theme", err)
	}

	texts, err := uc.content.GenerateSamplePosts(ctx, ThemeSeedFromModel(theme))
	if err != nil {
		if serr := uc.themes.UpdateThemeStatus(ctx, themeID, model.ThemeStatusFailed); serr != nil {
			logger.Errorw("Failed to mark theme failed", logger.FieldThemeID, themeID, logger.FieldError, serr)
		}
		return err
	}

	posts := make([]model.SamplePost, len(texts))
	for i, text := range texts {
		posts[i] = model.SamplePost{ThemeID: themeID, Content: text, Position: i + 1}
	}
	if err := uc.themes.SaveSamplePosts(ctx, themeID, posts); err != nil {
		return internal("failed to save sample posts", err)
	}
	logger.Infow("Theme sample posts generated", logger.FieldThemeID, themeID, "count", len(posts))
	return nil
}

func (uc *ThemeUsecase) List(ctx context.Context, userID uuid.UUID) ([]model.Theme, error) {
	themes, err := uc.themes.ListThemes(ctx, userID)
	if err != nil {
		return nil, internal("failed to list themes", err)
	}
	return themes, nil
}

func (uc *ThemeUsecase) Get(ctx context.Context, userID, id uuid.UUID) (*model.Theme, error) {
	theme, err := uc.themes.FindThemeByID(ctx, id)
	if err != nil {
		return nil, lookupError("theme", err)
	}
	if theme.UserID != userID {
		return nil, forbidden()
	}
	return theme, nil
}

func (uc *ThemeUsecase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := uc.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := uc.themes.DeleteTheme(ctx, id); err != nil {
		return lookupError("theme", err)
	}
	return nil
}
