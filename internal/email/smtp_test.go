package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeConfirmation(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{AppURL: "https://storify.test"})

	subject, body := m.compose("tok123", KindConfirmation)
	assert.Equal(t, "Confirm Your Storify Account", subject)
	assert.Contains(t, body, "https://storify.test/confirm?token=tok123")
}

func TestComposeReset(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{AppURL: "https://storify.test"})

	subject, body := m.compose("tok456", KindReset)
	assert.Equal(t, "Password Reset Request", subject)
	assert.Contains(t, body, "https://storify.test/reset-password?token=tok456")
}

func TestComposeWelcomeHasNoToken(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{})

	_, body := m.compose("secret", KindWelcome)
	assert.NotContains(t, body, "secret")
}

func TestDefaultPort(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.test"})
	assert.Equal(t, 587, m.cfg.Port)
}
