// Package handlers provides job handlers for the worker.
// Each handler implements the business logic for a specific job type
// and can be registered with the worker to process jobs from the queue.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/queue"
)

const (
	SendEmailJob      = "send_email"
	ShareRecipeJob    = "share_recipe"
	PriorityDigestJob = "priority_digest"
	ReprioritizeJob   = "reprioritize"
	RunReportJob      = "run_report"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *zap.Logger
}

func NewSendGridMailer(apiKey, fromName, fromAddress string, logger *zap.Logger) *SendGridMailer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
		logger: logger,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	htmlBody := "<pre>" + html.EscapeString(body) + "</pre>"
	email := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), body, htmlBody)

	response, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}

	m.logger.Info("email sent", zap.String("to", to), zap.Int("status", response.StatusCode))
	return nil
}

func SendEmailHandler(mailer Mailer) func(context.Context, *queue.Job) error {
	return func(ctx context.Context, job *queue.Job) error {
		to, ok := job.StringPayload("to")
		if !ok {
			return errors.New("missing 'to' field")
		}

		subject, ok := job.StringPayload("subject")
		if !ok {
			return errors.New("missing 'subject' field")
		}

		body, ok := job.StringPayload("body")
		if !ok {
			return errors.New("missing 'body' field")
		}

		return mailer.Send(ctx, to, subject, body)
	}
}
