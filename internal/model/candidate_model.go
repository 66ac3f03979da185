package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

const (
	CandidateSourceUpload      = "upload"
	CandidateSourceApplication = "application"
	CandidateSourceWebhook     = "webhook"
)

type Candidate struct {
	ID          uuid.UUID                   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	JobID       *uuid.UUID                  `gorm:"type:uuid;index" json:"job_id,omitempty"`
	Name        string                      `gorm:"type:varchar(255)" json:"name"`
	Email       string                      `gorm:"type:varchar(255)" json:"email"`
	Phone       string                      `gorm:"type:varchar(50)" json:"phone"`
	Location    string                      `gorm:"type:varchar(255)" json:"location"`
	Skills      datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"skills"`
	Experience  string                      `gorm:"type:text" json:"experience"`
	Education   string                      `gorm:"type:text" json:"education"`
	CVText      string                      `gorm:"type:text" json:"-"`
	CVURL       string                      `gorm:"type:text" json:"cv_url"`
	Source      string                      `gorm:"type:varchar(50)" json:"source"`
	AIRating    *float64                    `gorm:"type:float" json:"ai_rating,omitempty"`
	AISummary   string                      `gorm:"type:text" json:"ai_summary"`
	ContentRisk string                      `gorm:"type:text" json:"content_risk"`
	Embedding   *pgvector.Vector            `gorm:"type:vector(3072)" json:"-"`
	AnalyzedAt  *time.Time                  `json:"analyzed_at,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (c *Candidate) TableName() string {
	return "candidates"
}
