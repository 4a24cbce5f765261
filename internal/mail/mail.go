// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2025 OTPGate

// Package mail provides a queue-backed SMTP sender for the notification
// emails the service produces (registration, MFA lifecycle, scratch code
// warnings). Messages are rendered from embedded templates and delivered
// by a pool of background workers.
package mail

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	logger "log/slog"

	"github.com/wneessen/go-mail"

	"github.com/otpgate/otpgate-api/internal/config"
)

// MailQueue is the buffered channel mail workers consume from. It is
// created during service startup; a nil queue means mail is not wired.
var MailQueue chan Mail

// Mail is a single outbound message. FromName and FromEmail fall back to
// the configured SMTP sender when empty.
type Mail struct {
	FromName  string
	FromEmail string
	To        string
	Subject   string
	Body      string
}

// NewMail builds a Mail by rendering the named embedded template with the
// given data. The sender is taken from configuration.
func NewMail(to, subject, templateName string, data any) Mail {
	body, err := renderTemplate(templateName, data)
	if err != nil {
		logger.Error("failed to render mail template",
			"template", templateName,
			"error", err.Error(),
		)
	}

	return Mail{
		FromName:  config.SMTPFromName.GetString(),
		FromEmail: config.SMTPFromEmail.GetString(),
		To:        to,
		Subject:   subject,
		Body:      body,
	}
}

func renderTemplate(name string, data any) (string, error) {
	tmpl, err := template.ParseFS(templatesFS, fmt.Sprintf("templates/%s.html.tmpl", name))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Send enqueues the mail for delivery by the workers. It is a no-op when
// the mail service is disabled, and an error when the queue has not been
// initialized.
func (m *Mail) Send() error {
	if !config.ServiceMailEnabled.GetBool() {
		logger.Info("Mail service is disabled, not sending email",
			"to", m.To,
			"subject", m.Subject,
		)
		return nil
	}

	if MailQueue == nil {
		return errors.New("mail queue is not initialized")
	}

	MailQueue <- *m
	return nil
}

// MailWorker starts workerCount goroutines draining the queue. Delivery
// errors are reported on mailErr; workers exit when the queue is closed.
func MailWorker(mailQueue chan Mail, mailErr chan error, workerCount int) {
	for x := 0; x < workerCount; x++ {
		go func(workerID int) {
			logger.Info("Mail worker started", "worker_id", workerID)
			for m := range mailQueue {
				if err := ProcessMail(m); err != nil {
					logger.Error("Failed to send email",
						"worker_id", workerID,
						"to", m.To,
						"error", err.Error(),
					)
					if mailErr != nil {
						mailErr <- err
					}
					continue
				}
				logger.Debug("Email sent", "worker_id", workerID, "to", m.To)
			}
			logger.Info("Mail worker stopped", "worker_id", workerID)
		}(x)
	}
}

// ProcessMail delivers a single message over SMTP.
func ProcessMail(m Mail) error {
	fromName := m.FromName
	if fromName == "" {
		fromName = config.SMTPFromName.GetString()
	}
	fromEmail := m.FromEmail
	if fromEmail == "" {
		fromEmail = config.SMTPFromEmail.GetString()
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(fromName, fromEmail); err != nil {
		return fmt.Errorf("failed to set from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("failed to set to address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.Body)

	opts := []mail.Option{
		mail.WithPort(int(config.SMTPPort.GetUint())),
	}
	if config.SMTPUsername.GetString() != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(config.SMTPUsername.GetString()),
			mail.WithPassword(config.SMTPPassword.GetString()),
		)
	}
	if config.SMTPUseTLS.GetBool() {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(config.SMTPHost.GetString(), opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
