package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"publazer/internal/config"
)

// Sender delivers one HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type EmailSender struct {
	config *config.Config
	logger *slog.Logger
}

func NewEmailSender(cfg *config.Config, logger *slog.Logger) *EmailSender {
	return &EmailSender{config: cfg, logger: logger}
}

func (s *EmailSender) Enabled() bool {
	return s.config.SMTP.Email != "" && s.config.SMTP.Password != ""
}

func (s *EmailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	// Without SMTP credentials the mail is only logged.
	if !s.Enabled() {
		s.logger.InfoContext(ctx, "smtp not configured, skipping email", "to", to, "subject", subject)
		return nil
	}

	from := s.config.SMTP.Email
	host := s.config.SMTP.Host
	address := host + ":" + s.config.SMTP.Port

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", from, to, subject)
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	message := []byte(headers + mime + htmlBody)

	auth := smtp.PlainAuth("", from, s.config.SMTP.Password, host)
	if err := smtp.SendMail(address, auth, from, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
