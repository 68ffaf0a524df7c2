// Package mailer sends transactional mail over plain SMTP.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"

	"go.uber.org/zap"
)

// SMTPMailer delivers mail through a single SMTP relay.
type SMTPMailer struct {
	addr   string
	auth   smtp.Auth
	from   string
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger *zap.Logger
}

// New creates a mailer for the given relay. Username may be empty for an
// unauthenticated relay.
func New(host, port, username, password, from string, logger *zap.Logger) *SMTPMailer {
	m := &SMTPMailer{
		addr:   net.JoinHostPort(host, port),
		from:   from,
		send:   smtp.SendMail,
		logger: logger,
	}
	if username != "" {
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

// SendResetCode emails a password-reset code to the given address.
func (m *SMTPMailer) SendResetCode(ctx context.Context, email, code string) error {
	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + email + "\r\n" +
		"Subject: Password reset code\r\n" +
		"\r\n" +
		"Your password reset code is " + code + ".\r\n" +
		"It is valid for 10 minutes. If you did not request a reset, ignore this mail.\r\n")

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.send(m.addr, m.auth, m.from, []string{email}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	m.logger.Info("reset mail sent")
	return nil
}
