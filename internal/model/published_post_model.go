package model

import (
	"time"

	"github.com/google/uuid"
)

// PublishedPost records a UGC post accepted by LinkedIn.
type PublishedPost struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_published_posts_idempotency,priority:1" json:"user_id"`
	JobID          uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_published_posts_idempotency,priority:2" json:"job_id"`
	LinkedInPostID string    `gorm:"type:varchar(255);not null" json:"linkedin_post_id"`
	Content        string    `gorm:"type:text" json:"content"`
	// Idempotency keys are unique per user and job, not globally.
	IdempotencyKey *string   `gorm:"type:varchar(255);uniqueIndex:idx_published_posts_idempotency,priority:3" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (p *PublishedPost) TableName() string {
	return "published_posts"
}
