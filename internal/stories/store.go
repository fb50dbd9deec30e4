// Package stories persists generated stories for their owning accounts.
package stories

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmedoumar/storify/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a story does not exist or belongs to a
// different account.
var ErrNotFound = errors.New("story not found")

type Store struct {
	db *gorm.DB
}

func NewStore(database *gorm.DB) *Store {
	return &Store{db: database}
}

// Save inserts a new story and returns it with the assigned ID.
func (s *Store) Save(ctx context.Context, accountID uuid.UUID, title, content, genre string, meta datatypes.JSONMap) (*models.Story, error) {
	story := models.Story{
		AccountID: accountID,
		Title:     title,
		Content:   content,
		Genre:     genre,
		Meta:      meta,
	}
	if err := s.db.WithContext(ctx).Create(&story).Error; err != nil {
		return nil, fmt.Errorf("save story: %w", err)
	}
	return &story, nil
}

// ListByAccount returns the account's stories, newest first.
func (s *Store) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Story, error) {
	var out []models.Story
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return out, nil
}

// Get returns one story owned by the account.
func (s *Store) Get(ctx context.Context, accountID, storyID uuid.UUID) (*models.Story, error) {
	var story models.Story
	err := s.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", storyID, accountID).
		First(&story).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get story: %w", err)
	}
	return &story, nil
}

// Update replaces title, content, and genre of an owned story.
func (s *Store) Update(ctx context.Context, accountID, storyID uuid.UUID, title, content, genre string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("id = ? AND account_id = ?", storyID, accountID).
		Updates(map[string]any{
			"title":   title,
			"content": content,
			"genre":   genre,
		})
	if result.Error != nil {
		return fmt.Errorf("update story: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an owned story.
func (s *Store) Delete(ctx context.Context, accountID, storyID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", storyID, accountID).
		Delete(&models.Story{})
	if result.Error != nil {
		return fmt.Errorf("delete story: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
