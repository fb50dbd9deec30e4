package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Story is a saved piece of generated content owned by an account.
//
// Meta carries the generation settings the story was produced with (genre,
// length, type) so the UI can restore them when the story is reopened.
type Story struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Title     string            `gorm:"type:text;not null"`
	Content   string            `gorm:"type:text;not null"`
	Genre     string            `gorm:"type:text"`
	Meta      datatypes.JSONMap `gorm:"type:json"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`

	Account Account `gorm:"constraint:OnDelete:CASCADE;foreignKey:AccountID;references:ID"`
}

func (s *Story) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
