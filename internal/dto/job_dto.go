package dto

import (
	"time"

	"github.com/fadilmartias/klarus-hr/internal/model"
	"github.com/google/uuid"
)

type JobDTO struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Location       string    `json:"location"`
	WorkplaceType  string    `json:"workplace_type"`
	EmploymentType string    `json:"employment_type"`
	Description    string    `json:"description"`
	Technologies   []string  `json:"technologies"`
	ApplicantCount int       `json:"applicant_count"`
	Status         string    `json:"status"`
	ActiveDays     int       `json:"active_days"`
	ExpiresAt      time.Time `json:"expires_at"` // advisory, see model.Job.ExpiresAt
	IsExpired      bool      `json:"is_expired"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewJobDTO(j *model.Job, now time.Time) JobDTO {
	techs := []string(j.Technologies)
	if techs == nil {
		techs = []string{}
	}
	expires := j.ExpiresAt()
	return JobDTO{
		ID:             j.ID,
		Title:          j.Title,
		Location:       j.Location,
		WorkplaceType:  j.WorkplaceType,
		EmploymentType: j.EmploymentType,
		Description:    j.Description,
		Technologies:   techs,
		ApplicantCount: j.ApplicantCount,
		Status:         j.Status,
		ActiveDays:     j.ActiveDays,
		ExpiresAt:      expires,
		IsExpired:      now.After(expires),
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func NewJobDTOs(jobs []model.Job, now time.Time) []JobDTO {
	out := make([]JobDTO, len(jobs))
	for i := range jobs {
		out[i] = NewJobDTO(&jobs[i], now)
	}
	return out
}

// PublicJobDTO is what the unauthenticated application page sees.
type PublicJobDTO struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Location       string    `json:"location"`
	WorkplaceType  string    `json:"workplace_type"`
	EmploymentType string    `json:"employment_type"`
	Description    string    `json:"description"`
	Technologies   []string  `json:"technologies"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func NewPublicJobDTO(j *model.Job) PublicJobDTO {
	return PublicJobDTO{
		ID:             j.ID,
		Title:          j.Title,
		Location:       j.Location,
		WorkplaceType:  j.WorkplaceType,
		EmploymentType: j.EmploymentType,
		Description:    j.Description,
		Technologies:   j.Technologies,
		ExpiresAt:      j.ExpiresAt(),
	}
}

type UpdateJobStatusRequest struct {
	Status string `json:"status"`
}

type ApplicantCountDTO struct {
	ApplicantCount int `json:"applicant_count"`
}
