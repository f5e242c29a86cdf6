package repo

import (
	"context"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
)

// MailboxRepo is the inbox polling interface
type MailboxRepo interface {
	// FetchUnseen returns all decoded unseen messages
	FetchUnseen(ctx context.Context) ([]*domain.Message, error)

	// MarkSeen flags a message as read in the mailbox
	MarkSeen(ctx context.Context, msg *domain.Message) error

	// Ping verifies the mailbox is reachable
	Ping(ctx context.Context) error
}
