// Package mailer dispatches notification emails with document attachments.
// Delivery is a side channel: callers log failures and move on, so this
// package never blocks report-card durability.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// Sender delivers a message with a single attachment.
type Sender interface {
	SendWithAttachment(ctx context.Context, to, subject, body string, attachment []byte, filename string) error
}

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	cfg    Config
	logger zerolog.Logger
}

// NewSMTPSender constructs an SMTP-backed sender.
func NewSMTPSender(cfg Config, logger zerolog.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host must not be empty")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address must not be empty")
	}

	return &SMTPSender{
		cfg:    cfg,
		logger: logger.With().Str("component", "smtp_sender").Logger(),
	}, nil
}

// SendWithAttachment builds a multipart MIME message and submits it to the
// relay. The attachment content type is sniffed from its bytes.
func (s *SMTPSender) SendWithAttachment(ctx context.Context, to, subject, body string, attachment []byte, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient address must not be empty")
	}

	message := buildMessage(s.cfg.From, to, subject, body, attachment, filename)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, message); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	s.logger.Info().Str("to", to).Str("subject", subject).Int("attachment_bytes", len(attachment)).Msg("notification sent")
	return nil
}

const mimeBoundary = "schoolerp-mixed-boundary"

func buildMessage(from, to, subject, body string, attachment []byte, filename string) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mimeBoundary)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")

	if len(attachment) > 0 {
		contentType := mimetype.Detect(attachment).String()

		fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
		fmt.Fprintf(&buf, "Content-Type: %s\r\n", contentType)
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", filename)

		encoded := base64.StdEncoding.EncodeToString(attachment)
		for len(encoded) > 76 {
			buf.WriteString(encoded[:76])
			buf.WriteString("\r\n")
			encoded = encoded[76:]
		}
		buf.WriteString(encoded)
		buf.WriteString("\r\n")
	}

	fmt.Fprintf(&buf, "--%s--\r\n", mimeBoundary)
	return buf.Bytes()
}
