package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ThemeStatusPending   = "pending"
	ThemeStatusCompleted = "completed"
	ThemeStatusFailed    = "failed"
)

// Theme is a LinkedIn content-strategy template.
type Theme struct {
	ID                   uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID               uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Name                 string       `gorm:"type:varchar(255);not null" json:"name"`
	Category             string       `gorm:"type:varchar(255)" json:"category"`
	Audience             string       `gorm:"type:varchar(255)" json:"audience"`
	Objectives           string       `gorm:"type:text" json:"objectives"`
	CategoryExplanation  string       `gorm:"type:text" json:"category_explanation"`
	AudienceExplanation  string       `gorm:"type:text" json:"audience_explanation"`
	ObjectiveExplanation string       `gorm:"type:text" json:"objective_explanation"`
	IsCustom             bool         `gorm:"not null;default:false" json:"is_custom"`
	Status               string       `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`
	SamplePosts          []SamplePost `gorm:"constraint:OnDelete:CASCADE;" json:"sample_posts,omitempty"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

func (t *Theme) TableName() string {
	return "themes"
}

type SamplePost struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ThemeID   uuid.UUID `gorm:"type:uuid;not null;index" json:"theme_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *SamplePost) TableName() string {
	return "theme_sample_posts"
}
