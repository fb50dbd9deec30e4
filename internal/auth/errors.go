package auth

import (
	"errors"
	"fmt"
)

// Failure reasons surfaced to callers. Each is distinguishable with
// errors.Is so the UI can react precisely, e.g. offering a resend action
// only on ErrEmailNotConfirmed.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrInvalidToken      = errors.New("invalid token")

	// ErrStorage wraps any underlying storage fault. No operation retries
	// internally; the caller owns retry policy.
	ErrStorage = errors.New("storage failure")
)

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
