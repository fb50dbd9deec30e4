package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account represents a Storify user identified by email.
//
// An account starts out pending: ConfirmationToken holds the secret mailed to
// the address and IsConfirmed is false. Consuming the token records the
// password hash, flips IsConfirmed, and clears the token. ResetToken is only
// present while a password reset is outstanding.
type Account struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email             string    `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash      *string   `gorm:"type:text"`
	ConfirmationToken *string   `gorm:"type:text"`
	IsConfirmed       bool      `gorm:"not null;default:false"`
	ResetToken        *string   `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`

	Stories []Story `gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns the surrogate key; SQLite has no uuid default.
func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
