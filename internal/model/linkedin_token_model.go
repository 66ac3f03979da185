package model

import (
	"time"

	"github.com/fadilmartias/klarus-hr/internal/crypto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var tokenEncryptor *crypto.TokenEncryptor

// InitTokenEncryption enables at-rest encryption for LinkedInToken secrets.
// Without it tokens are stored as-is.
func InitTokenEncryption(base64Key string) error {
	enc, err := crypto.NewTokenEncryptor(base64Key)
	if err != nil {
		return err
	}
	tokenEncryptor = enc
	return nil
}

// LinkedInToken is the single live LinkedIn credential of a user.
type LinkedInToken struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	MemberID     string    `gorm:"type:varchar(255);not null" json:"member_id"`
	Scope        string    `gorm:"type:varchar(255)" json:"scope"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t *LinkedInToken) TableName() string {
	return "linkedin_tokens"
}

// AuthorURN is the UGC author reference for this member.
func (t *LinkedInToken) AuthorURN() string {
	return "urn:li:person:" + t.MemberID
}

func (t *LinkedInToken) BeforeSave(tx *gorm.DB) error {
	return t.transform(func(s string) (string, error) { return tokenEncryptor.Encrypt(s) })
}

func (t *LinkedInToken) AfterSave(tx *gorm.DB) error {
	return t.transform(func(s string) (string, error) { return tokenEncryptor.Decrypt(s) })
}

func (t *LinkedInToken) AfterFind(tx *gorm.DB) error {
	return t.transform(func(s string) (string, error) { return tokenEncryptor.Decrypt(s) })
}

func (t *LinkedInToken) transform(fn func(string) (string, error)) error {
	if tokenEncryptor == nil {
		return nil
	}
	access, err := fn(t.AccessToken)
	if err != nil {
		return err
	}
	refresh, err := fn(t.RefreshToken)
	if err != nil {
		return err
	}
	t.AccessToken, t.RefreshToken = access, refresh
	return nil
}
