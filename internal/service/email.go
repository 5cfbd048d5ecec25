package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

var ErrEmailNotConfigured = errors.New("email service not configured (missing RESEND_API_KEY)")

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

// NewEmailService sends through Resend. In development, or without an API
// key, mails are only logged.
func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendMagicLinkEmail(email, token, name string) error {
	magicURL := fmt.Sprintf("%s/auth/magic-link/%s", s.appURL, token)
	subject, body := magicLinkEmailTemplate(name, magicURL, s.appName)
	return s.send("magic_link", email, subject, body, "url", magicURL)
}

func (s *EmailService) SendSessionCreatedEmail(email, name, sessionName string) error {
	settingsURL := fmt.Sprintf("%s/app/dashboard", s.appURL)
	subject, body := sessionCreatedEmailTemplate(name, sessionName, settingsURL, s.appName)
	return s.send("session_created", email, subject, body, "session", sessionName)
}

func (s *EmailService) SendAccountDeletedEmail(email, name string) error {
	subject, body := accountDeletedEmailTemplate(name, s.appName)
	return s.send("account_deleted", email, subject, body)
}

func (s *EmailService) send(kind, to, subject, body string, logArgs ...any) error {
	if s.isDev {
		args := append([]any{"type", kind, "to", to, "subject", subject}, logArgs...)
		slog.Info("email sent (dev mode)", args...)
		return nil
	}

	if s.client == nil {
		return ErrEmailNotConfigured
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	slog.Info("email sent", "type", kind)
	return nil
}
