package data

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
	"github.com/mailwatch/mailwatch/internal/biz/repo"
	"github.com/mailwatch/mailwatch/internal/infra/imapmail"
)

// mailboxRepo adapts the IMAP client to the mailbox repository
type mailboxRepo struct {
	client  *imapmail.Client
	account string // used as recipient fallback
	log     zerolog.Logger
}

// NewMailboxRepo creates a new mailbox repository
func NewMailboxRepo(client *imapmail.Client, account string, log zerolog.Logger) repo.MailboxRepo {
	return &mailboxRepo{client: client, account: account, log: log}
}

// FetchUnseen returns all unseen messages as domain messages
func (r *mailboxRepo) FetchUnseen(ctx context.Context) ([]*domain.Message, error) {
	raw, err := r.client.FetchUnseen(ctx)
	if err != nil {
		return nil, err
	}

	var result []*domain.Message
	for i := range raw {
		m := &raw[i]
		if m.MessageID == "" {
			r.log.Debug().Uint32("uid", m.UID).Msg("message without Message-ID, keyed by mailbox UID")
		}
		result = append(result, toDomainMessage(m, r.account))
	}
	return result, nil
}

// toDomainMessage converts a decoded inbox message. Messages lacking a
// Message-ID header are keyed by their mailbox UID, which is stable
// across fetches, so a retried message upserts the same stats row.
func toDomainMessage(m *imapmail.Message, account string) *domain.Message {
	id := m.MessageID
	if id == "" {
		id = fmt.Sprintf("uid-%d", m.UID)
	}

	recipient := domain.BareAddress(m.To)
	if recipient == "" {
		recipient = account
	}

	return &domain.Message{
		ID:             id,
		UID:            m.UID,
		ThreadID:       m.InReplyTo,
		Sender:         domain.BareAddress(m.From),
		SenderDomain:   domain.DomainOf(m.From),
		Recipient:      recipient,
		Subject:        domain.NormalizeText(m.Subject),
		Body:           domain.NormalizeText(m.TextBody),
		Date:           m.Date,
		HasAttachments: m.HasAttachments,
	}
}

// MarkSeen flags the message as read in the mailbox
func (r *mailboxRepo) MarkSeen(ctx context.Context, msg *domain.Message) error {
	return r.client.MarkSeen(ctx, msg.UID)
}

// Ping verifies the mailbox is reachable
func (r *mailboxRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
