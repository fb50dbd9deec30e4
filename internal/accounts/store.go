// Package accounts persists Account records and is the sole source of truth
// for credential and token state.
package accounts

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/ahmedoumar/storify/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no account exists for the given email.
var ErrNotFound = errors.New("account not found")

// Store provides single-record operations over the accounts table. All
// operations are keyed by email and each write touches exactly one row.
type Store struct {
	db *gorm.DB
}

// NewStore wraps the injected database handle. The handle is owned by the
// composition root, not by the store.
func NewStore(database *gorm.DB) *Store {
	return &Store{db: database}
}

// CreatePending inserts a pending account carrying the confirmation token.
// If the email already has a record, its token is overwritten and the
// account drops back to unconfirmed; re-issuing to an already-confirmed
// account is a decision the caller must make before getting here.
func (s *Store) CreatePending(ctx context.Context, email, token string) error {
	account := models.Account{
		Email:             email,
		ConfirmationToken: &token,
		IsConfirmed:       false,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]any{
				"confirmation_token": token,
				"is_confirmed":       false,
			}),
		}).
		Create(&account).Error
	if err != nil {
		return fmt.Errorf("create pending account: %w", err)
	}
	return nil
}

// Activate records the password hash, marks the account confirmed, and
// clears the confirmation token in a single update.
func (s *Store) Activate(ctx context.Context, email, passwordHash string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("email = ?", email).
		Updates(map[string]any{
			"password_hash":      passwordHash,
			"is_confirmed":       true,
			"confirmation_token": nil,
		})
	return oneRow(result, "activate account")
}

// Fetch returns the account for email, or ErrNotFound.
func (s *Store) Fetch(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	return &account, nil
}

// Exists reports whether an account record exists for email.
func (s *Store) Exists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return count > 0, nil
}

// SetPassword replaces the stored password hash.
func (s *Store) SetPassword(ctx context.Context, email, passwordHash string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("email = ?", email).
		Update("password_hash", passwordHash)
	return oneRow(result, "set password")
}

// Delete removes the account record entirely. There is no soft delete.
func (s *Store) Delete(ctx context.Context, email string) error {
	result := s.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.Account{})
	return oneRow(result, "delete account")
}

// SetConfirmationToken overwrites the outstanding confirmation token.
func (s *Store) SetConfirmationToken(ctx context.Context, email, token string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("email = ?", email).
		Update("confirmation_token", token)
	return oneRow(result, "set confirmation token")
}

// GetConfirmationToken returns the outstanding confirmation token, or ""
// when none has been issued.
func (s *Store) GetConfirmationToken(ctx context.Context, email string) (string, error) {
	account, err := s.Fetch(ctx, email)
	if err != nil {
		return "", err
	}
	if account.ConfirmationToken == nil {
		return "", nil
	}
	return *account.ConfirmationToken, nil
}

// VerifyConfirmationToken reports whether token matches the stored
// confirmation token. An absent stored token never matches.
func (s *Store) VerifyConfirmationToken(ctx context.Context, email, token string) (bool, error) {
	account, err := s.Fetch(ctx, email)
	if err != nil {
		return false, err
	}
	return tokenMatches(account.ConfirmationToken, token), nil
}

// SetResetToken records a password-reset token, invalidating any previous one.
func (s *Store) SetResetToken(ctx context.Context, email, token string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("email = ?", email).
		Update("reset_token", token)
	return oneRow(result, "set reset token")
}

// VerifyResetToken reports whether token matches the outstanding reset
// token. An absent stored token never matches.
func (s *Store) VerifyResetToken(ctx context.Context, email, token string) (bool, error) {
	account, err := s.Fetch(ctx, email)
	if err != nil {
		return false, err
	}
	return tokenMatches(account.ResetToken, token), nil
}

// ClearResetToken removes the outstanding reset token.
func (s *Store) ClearResetToken(ctx context.Context, email string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("email = ?", email).
		Update("reset_token", nil)
	return oneRow(result, "clear reset token")
}

// CompleteReset stores the new password hash and clears the reset token as
// one transaction, so a partial failure can never leave a stale reset token
// valid alongside a changed password.
func (s *Store) CompleteReset(ctx context.Context, email, passwordHash string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Account{}).
			Where("email = ?", email).
			Updates(map[string]any{
				"password_hash": passwordHash,
				"reset_token":   nil,
			})
		return oneRow(result, "complete reset")
	})
}

func tokenMatches(stored *string, candidate string) bool {
	if stored == nil || *stored == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(candidate)) == 1
}

func oneRow(result *gorm.DB, op string) error {
	if result.Error != nil {
		return fmt.Errorf("%s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
