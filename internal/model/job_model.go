package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

const (
	JobStatusDraft     = "draft"
	JobStatusPublished = "published"
	JobStatusClosed    = "closed"

	DefaultJobActiveDays = 30
)

type Job struct {
	ID             uuid.UUID                   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	Title          string                      `gorm:"type:varchar(255);not null" json:"title"`
	Location       string                      `gorm:"type:varchar(255)" json:"location"`
	WorkplaceType  string                      `gorm:"type:varchar(50)" json:"workplace_type"`  // on-site, hybrid, remote
	EmploymentType string                      `gorm:"type:varchar(50)" json:"employment_type"` // full-time, part-time, contract...
	Description    string                      `gorm:"type:text" json:"description"`
	Technologies   datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"technologies"`
	ApplicantCount int                         `gorm:"not null;default:0" json:"applicant_count"`
	Status         string                      `gorm:"type:varchar(50);not null;default:'draft'" json:"status"`
	ActiveDays     int                         `gorm:"not null;default:30" json:"active_days"`
	Embedding      *pgvector.Vector            `gorm:"type:vector(3072)" json:"-"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

func (j *Job) TableName() string {
	return "jobs"
}

// ExpiresAt is advisory only; nothing closes a job when it passes.
func (j *Job) ExpiresAt() time.Time {
	days := j.ActiveDays
	if days <= 0 {
		days = DefaultJobActiveDays
	}
	return j.CreatedAt.AddDate(0, 0, days)
}

func IsValidJobStatus(status string) bool {
	switch status {
	case JobStatusDraft, JobStatusPublished, JobStatusClosed:
		return true
	}
	return false
}
