// Package email delivers account lifecycle mail. Delivery is best-effort:
// tokens are persisted before any send is attempted, and a failed send never
// rolls back an account state transition.
package email

import "context"

// Kind selects the message template for a delivery.
type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindReset        Kind = "reset"
	KindWelcome      Kind = "welcome"
)

// Mailer hands a token to the account holder. The token is empty for kinds
// that carry none (welcome mail).
type Mailer interface {
	Deliver(ctx context.Context, to, token string, kind Kind) error
}
