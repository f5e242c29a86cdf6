package repo

import (
	"context"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
)

// NotifierRepo delivers alerts and digests to the chat channel
type NotifierRepo interface {
	// SendAlert pushes a per-message notification
	SendAlert(ctx context.Context, msg *domain.Message, cls domain.Classification, senderGroup, reason string) error

	// SendDailyDigest pushes the rendered daily digest
	SendDailyDigest(ctx context.Context, text string) error

	// SendWeeklyDigest pushes the rendered weekly digest
	SendWeeklyDigest(ctx context.Context, text string) error

	// SendMonthlyDigest pushes the rendered monthly digest
	SendMonthlyDigest(ctx context.Context, text string) error

	// Ping verifies the chat service is reachable
	Ping(ctx context.Context) error
}

// MailerRepo is the optional secondary digest delivery channel
type MailerRepo interface {
	// SendDigestEmail delivers a digest as a plain-text email
	SendDigestEmail(ctx context.Context, subject, body string) error
}
