// File: utils/mailer.go
package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"memorybook/config"

	"go.uber.org/zap"
)

// Mailer sends transactional mail. The only message this system sends
// is the login verification link.
type Mailer interface {
	SendVerificationEmail(to, link string) error
}

// SMTPMailer sends through the configured SMTP relay.
type SMTPMailer struct{}

func NewSMTPMailer() Mailer {
	return &SMTPMailer{}
}

func (m *SMTPMailer) SendVerificationEmail(to, link string) error {
	cfg := config.AppConfig
	if cfg.SMTPHost == "" {
		// No relay configured (development); log the link instead of
		// failing the whole verification flow.
		GetLogger().Sugar().Infof("SMTP not configured, verification link for %s: %s", to, link)
		return nil
	}

	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Verify your email\r\n")
	fmt.Fprintf(&b, "\r\n")
	fmt.Fprintf(&b, "Hello,\r\n\r\n")
	fmt.Fprintf(&b, "Click the link below to verify your email address:\r\n\r\n%s\r\n\r\n", link)
	fmt.Fprintf(&b, "The link is valid once and expires in 24 hours.\r\n")

	addr := cfg.SMTPHost + ":" + cfg.SMTPPort
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(b.String())); err != nil {
		GetLogger().Error("Failed to send verification email", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}
