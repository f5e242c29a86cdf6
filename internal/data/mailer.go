package data

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/repo"
	"github.com/mailwatch/mailwatch/internal/conf"
)

// smtpMailer delivers digests as plain-text emails
type smtpMailer struct {
	cfg       conf.SMTPConfig
	recipient string
	log       zerolog.Logger
}

// NewSMTPMailer creates the email digest channel
func NewSMTPMailer(cfg conf.SMTPConfig, recipient string, log zerolog.Logger) repo.MailerRepo {
	return &smtpMailer{cfg: cfg, recipient: recipient, log: log}
}

// SendDigestEmail delivers a digest to the configured recipient
func (m *smtpMailer) SendDigestEmail(_ context.Context, subject, body string) error {
	raw, err := buildMessage(m.cfg.User, m.recipient, subject, body)
	if err != nil {
		return err
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := sasl.NewPlainClient("", m.cfg.User, m.cfg.Password)

	if err := smtp.SendMail(addr, auth, m.cfg.User, []string{m.recipient}, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("sending digest email: %w", err)
	}

	m.log.Info().Str("recipient", m.recipient).Str("subject", subject).Msg("digest email sent")
	return nil
}

// buildMessage assembles a single-part plain-text RFC 5322 message
func buildMessage(from, to, subject, body string) ([]byte, error) {
	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing message writer: %w", err)
	}

	return buf.Bytes(), nil
}
