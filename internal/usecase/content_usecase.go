package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/fadilmartias/klarus-hr/internal/service"
	"github.com/fadilmartias/klarus-hr/internal/util"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// contentTemperature is fixed for every generation call.
const contentTemperature = 0.7

const contentSystemPrompt = "You are a recruiting marketing specialist who writes engaging, professional LinkedIn posts."

type JobSeed struct {
	Title          string   `json:"title"`
	Location       string   `json:"location"`
	WorkplaceType  string   `json:"workplace_type"`
	EmploymentType string   `json:"employment_type"`
	Description    string   `json:"description"`
	Technologies   []string `json:"technologies"`
}

type ThemeSeed struct {
	Name                 string `json:"name"`
	Category             string `json:"category"`
	Audience             string `json:"audience"`
	Objectives           string `json:"objectives"`
	CategoryExplanation  string `json:"category_explanation"`
	AudienceExplanation  string `json:"audience_explanation"`
	ObjectiveExplanation string `json:"objective_explanation"`
}

// GenerateContentInput carries exactly one seed: inline fields or a stored record id.
type GenerateContentInput struct {
	JobID   *uuid.UUID `json:"job_id"`
	ThemeID *uuid.UUID `json:"theme_id"`
	Job     *JobSeed   `json:"job"`
	Theme   *ThemeSeed `json:"theme"`
}

type ContentUsecase struct {
	llm    service.LLMServiceInterface
	jobs   JobStore
	themes ThemeStore
}

func NewContentUsecase(llm service.LLMServiceInterface, jobs JobStore, themes ThemeStore) *ContentUsecase {
	return &ContentUsecase{llm: llm, jobs: jobs, themes: themes}
}

func (uc *ContentUsecase) Generate(ctx context.Context, userID uuid.UUID, in GenerateContentInput) (string, error) {
	switch {
	case in.Job != nil:
		return uc.GenerateForJob(ctx, *in.Job)
	case in.Theme != nil:
		return uc.GenerateForTheme(ctx, *in.Theme)
	case in.JobID != nil:
		job, err := uc.jobs.FindJobByID(ctx, *in.JobID)
		if err != nil {
			return "", lookupError("job", err)
		}
		if job.UserID != userID {
			return "", forbidden()
		}
		return uc.GenerateForJob(ctx, JobSeedFromModel(job))
	case in.ThemeID != nil:
		theme, err := uc.themes.FindThemeByID(ctx, *in.ThemeID)
		if err != nil {
			return "", lookupError("theme", err)
		}
		if theme.UserID != userID {
			return "", forbidden()
		}
		return uc.GenerateForTheme(ctx, ThemeSeedFromModel(theme))
	}
	return "", badRequest("a job or theme seed is required")
}

func (uc *ContentUsecase) GenerateForJob(ctx context.Context, seed JobSeed) (string, error) {
	if strings.TrimSpace(seed.Title) == "" {
		return "", badRequest("job title is required")
	}
	prompt := fmt.Sprintf(`Write a LinkedIn post announcing that we are hiring for the following position.
Keep it under 1300 characters, use a friendly professional tone, add a short call to action and 3-5 relevant hashtags.
Return only the post text.

Title: %s
Location: %s
Workplace type: %s
Employment type: %s
Technologies: %s
Description:
%s
`, seed.Title, seed.Location, seed.WorkplaceType, seed.EmploymentType, strings.Join(seed.Technologies, ", "), seed.Description)

	return uc.complete(ctx, prompt)
}

func (uc *ContentUsecase) GenerateForTheme(ctx context.Context, seed ThemeSeed) (string, error) {
	if strings.TrimSpace(seed.Category) == "" && strings.TrimSpace(seed.Name) == "" {
		return "", badRequest("theme name or category is required")
	}
	return uc.complete(ctx, themePrompt(seed, "Write one LinkedIn post for this content theme. Return only the post text."))
}

// GenerateSamplePosts asks for three posts in one call and expects a JSON array back.
func (uc *ContentUsecase) GenerateSamplePosts(ctx context.Context, seed ThemeSeed) ([]string, error) {
	text, err := uc.complete(ctx, themePrompt(seed,
		`Write three distinct sample LinkedIn posts for this content theme.
Return STRICTLY a JSON array of three strings and nothing else.`))
	if err != nil {
		return nil, err
	}

	raw, ok := util.ExtractJSONArray(text)
	if !ok {
		return nil, &Error{Code: http.StatusUnprocessableEntity, Message: "AI response did not contain sample posts"}
	}
	var posts []string
	for _, item := range gjson.Parse(raw).Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			posts = append(posts, s)
		}
	}
	if len(posts) == 0 {
		return nil, &Error{Code: http.StatusUnprocessableEntity, Message: "AI response did not contain sample posts"}
	}
	return posts, nil
}

func themePrompt(seed ThemeSeed, instruction string) string {
	return fmt.Sprintf(`%s

Theme: %s
Category: %s
Why this category: %s
Target audience: %s
Why this audience: %s
Objectives: %s
How the objectives are met: %s
`, instruction, seed.Name, seed.Category, seed.CategoryExplanation, seed.Audience, seed.AudienceExplanation, seed.Objectives, seed.ObjectiveExplanation)
}

func (uc *ContentUsecase) complete(ctx context.Context, prompt string) (string, error) {
	text, err := uc.llm.Complete(ctx, service.ChatRequest{
		System:      contentSystemPrompt,
		Prompt:      prompt,
		Temperature: contentTemperature,
	})
	if err != nil {
		return "", newError(http.StatusBadGateway, "content generation failed", err)
	}
	return strings.TrimSpace(text), nil
}

func JobSeedFromModel(j *model.Job) JobSeed {
	return JobSeed{
		Title:          j.Title,
		Location:       j.Location,
		WorkplaceType:  j.WorkplaceType,
		EmploymentType: j.EmploymentType,
		Description:    j.Description,
		Technologies:   j.Technologies,
	}
}

func ThemeSeedFromModel(t *model.Theme) ThemeSeed {
	return ThemeSeed{
		Name:                 t.Name,
		Category:             t.Category,
		Audience:             t.Audience,
		Objectives:           t.Objectives,
		CategoryExplanation:  t.CategoryExplanation,
		AudienceExplanation:  t.AudienceExplanation,
		ObjectiveExplanation: t.ObjectiveExplanation,
	}
}
