// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mailer sends HTML email over SMTP.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"portfolio/internal/config"
)

var (
	// ErrNotConfigured is returned when no SMTP host or sender is set.
	ErrNotConfigured = errors.New("mailer not configured")
	// ErrInvalidAddress is returned for a malformed recipient.
	ErrInvalidAddress = errors.New("invalid email address")
)

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends mail through the configured server. SendMail upgrades to TLS
// when the server offers STARTTLS.
type SMTP struct {
	cfg  config.SMTPConfig
	send sendFunc
}

// New creates an SMTP sender.
func New(cfg config.SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg, send: smtp.SendMail}
}

// Configured reports whether Send can deliver anything.
func (s *SMTP) Configured() bool {
	return s.cfg.Host != "" && s.cfg.Port != 0 && s.cfg.From != ""
}

// Send delivers an HTML message to one recipient.
func (s *SMTP) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, to)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	msg := buildMessage(s.cfg.From, to, subject, htmlBody)
	if err := s.send(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", strings.TrimSpace(subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(htmlBody)
	return buf.Bytes()
}
