// Package auth orchestrates the account lifecycle: signup and confirmation,
// login, and password reset. It owns no storage of its own; every durable
// write goes through the account store.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmedoumar/storify/internal/accounts"
	"github.com/ahmedoumar/storify/internal/email"
	"github.com/ahmedoumar/storify/internal/models"
	"github.com/rs/zerolog/log"
)

// Store is the slice of the account store the lifecycle manager needs.
type Store interface {
	CreatePending(ctx context.Context, email, token string) error
	Activate(ctx context.Context, email, passwordHash string) error
	Fetch(ctx context.Context, email string) (*models.Account, error)
	Exists(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, email string) error
	SetConfirmationToken(ctx context.Context, email, token string) error
	VerifyConfirmationToken(ctx context.Context, email, token string) (bool, error)
	SetResetToken(ctx context.Context, email, token string) error
	VerifyResetToken(ctx context.Context, email, token string) (bool, error)
	CompleteReset(ctx context.Context, email, passwordHash string) error
}

// Service implements the signup/confirm, login, and password-reset protocols.
type Service struct {
	store  Store
	hasher Hasher
	mailer email.Mailer
}

func NewService(store Store, hasher Hasher, mailer email.Mailer) *Service {
	return &Service{store: store, hasher: hasher, mailer: mailer}
}

// RequestSignup starts the signup protocol for an unknown or pending email:
// it issues a fresh confirmation token, stores it, and mails it out. An
// already-confirmed email is rejected; the store alone would silently
// overwrite it.
func (s *Service) RequestSignup(ctx context.Context, addr string) (string, error) {
	account, err := s.store.Fetch(ctx, addr)
	switch {
	case err == nil:
		if account.IsConfirmed {
			return "", ErrEmailAlreadyExists
		}
	case errors.Is(err, accounts.ErrNotFound):
		// first signup for this address
	default:
		return "", storageErr(err)
	}

	token, err := GenerateToken()
	if err != nil {
		return "", fmt.Errorf("generate confirmation token: %w", err)
	}

	if err := s.store.CreatePending(ctx, addr, token); err != nil {
		return "", storageErr(err)
	}

	s.deliver(ctx, addr, token, email.KindConfirmation)
	return token, nil
}

// Confirm consumes the confirmation token, records the password, and
// activates the account.
func (s *Service) Confirm(ctx context.Context, addr, token, password string) error {
	ok, err := s.store.VerifyConfirmationToken(ctx, addr, token)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return ErrInvalidToken
		}
		return storageErr(err)
	}
	if !ok {
		return ErrInvalidToken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.Activate(ctx, addr, hash); err != nil {
		return storageErr(err)
	}

	s.deliver(ctx, addr, "", email.KindWelcome)
	return nil
}

// ResendConfirmation reissues the confirmation token for a pending account,
// invalidating any previously issued one.
func (s *Service) ResendConfirmation(ctx context.Context, addr string) (string, error) {
	account, err := s.store.Fetch(ctx, addr)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", storageErr(err)
	}
	if account.IsConfirmed {
		return "", ErrEmailAlreadyExists
	}

	token, err := GenerateToken()
	if err != nil {
		return "", fmt.Errorf("generate confirmation token: %w", err)
	}

	if err := s.store.SetConfirmationToken(ctx, addr, token); err != nil {
		return "", storageErr(err)
	}

	s.deliver(ctx, addr, token, email.KindConfirmation)
	return token, nil
}

// Login checks credentials and returns the account on success. The failure
// reasons are ordered: unknown email, then unconfirmed, then bad password.
func (s *Service) Login(ctx context.Context, addr, password string) (*models.Account, error) {
	account, err := s.store.Fetch(ctx, addr)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr(err)
	}

	if !account.IsConfirmed {
		return nil, ErrEmailNotConfirmed
	}

	if account.PasswordHash == nil || !s.hasher.Compare(*account.PasswordHash, password) {
		return nil, ErrIncorrectPassword
	}

	return account, nil
}

// RequestReset issues a reset token for an existing account. Any previous
// outstanding reset token is overwritten.
func (s *Service) RequestReset(ctx context.Context, addr string) (string, error) {
	exists, err := s.store.Exists(ctx, addr)
	if err != nil {
		return "", storageErr(err)
	}
	if !exists {
		return "", ErrUserNotFound
	}

	token, err := GenerateToken()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.store.SetResetToken(ctx, addr, token); err != nil {
		return "", storageErr(err)
	}

	s.deliver(ctx, addr, token, email.KindReset)
	return token, nil
}

// ResetPassword consumes the reset token and records the new password. The
// token is single-use: the password change and the token clear are one
// transaction in the store.
func (s *Service) ResetPassword(ctx context.Context, addr, token, newPassword string) error {
	ok, err := s.store.VerifyResetToken(ctx, addr, token)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return ErrInvalidToken
		}
		return storageErr(err)
	}
	if !ok {
		return ErrInvalidToken
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.CompleteReset(ctx, addr, hash); err != nil {
		return storageErr(err)
	}
	return nil
}

// DeleteAccount removes the account record entirely.
func (s *Service) DeleteAccount(ctx context.Context, addr string) error {
	if err := s.store.Delete(ctx, addr); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return ErrUserNotFound
		}
		return storageErr(err)
	}
	return nil
}

// AccountExists reports whether any record exists for the email.
func (s *Service) AccountExists(ctx context.Context, addr string) (bool, error) {
	exists, err := s.store.Exists(ctx, addr)
	if err != nil {
		return false, storageErr(err)
	}
	return exists, nil
}

// deliver hands a token to the mail collaborator without blocking the state
// transition that produced it. The token is already durable by the time this
// runs; a lost mail is recovered by a user-initiated resend.
func (s *Service) deliver(ctx context.Context, addr, token string, kind email.Kind) {
	go func(ctx context.Context) {
		if err := s.mailer.Deliver(ctx, addr, token, kind); err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("token delivery failed")
		}
	}(context.WithoutCancel(ctx))
}
