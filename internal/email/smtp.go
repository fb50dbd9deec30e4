package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

// SMTPConfig carries the dialer settings for outgoing mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppURL   string
}

// SMTPMailer sends lifecycle mail through an SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Deliver(ctx context.Context, to, token string, kind Kind) error {
	subject, body := m.compose(token, kind)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		log.Warn().Err(err).Str("to", to).Str("kind", string(kind)).Msg("send email")
		return err
	}
	return nil
}

func (m *SMTPMailer) compose(token string, kind Kind) (string, string) {
	switch kind {
	case KindConfirmation:
		link := m.cfg.AppURL + "/confirm?token=" + token
		return "Confirm Your Storify Account",
			`<h1>Welcome to Storify!</h1>
<p>Please confirm your email address by clicking the link below:</p>
<a href="` + link + `">Confirm Email</a>
<p>If you didn't create an account on Storify, please ignore this email.</p>`
	case KindReset:
		link := m.cfg.AppURL + "/reset-password?token=" + token
		return "Password Reset Request",
			`<h1>Password Reset Request</h1>
<p>You have requested to reset your password. Click the link below to set a new one:</p>
<a href="` + link + `">Reset Password</a>
<p>If you did not request this, please ignore this email.</p>`
	case KindWelcome:
		return "Welcome to Storify!",
			`<h1>Your account is active</h1>
<p>Your email has been confirmed, and your Storify account is now active.</p>
<p>Start creating amazing stories today!</p>`
	default:
		return "Storify", fmt.Sprintf("<p>Unknown message kind %q.</p>", kind)
	}
}

// LogMailer is used when SMTP is not configured: it prints the token so a
// developer can complete flows locally.
type LogMailer struct{}

func (LogMailer) Deliver(ctx context.Context, to, token string, kind Kind) error {
	log.Info().Str("to", to).Str("kind", string(kind)).Str("token", token).
		Msg("email delivery skipped, SMTP not configured")
	return nil
}
