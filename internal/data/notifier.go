package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
	"github.com/mailwatch/mailwatch/internal/biz/repo"
	"github.com/mailwatch/mailwatch/internal/infra/lark"
	"github.com/mailwatch/mailwatch/internal/rate"
)

// larkNotifier implements the notifier repository over a Lark chat
type larkNotifier struct {
	client  *lark.Client
	chatID  string
	limiter rate.Limiter
	log     zerolog.Logger
}

// NewLarkNotifier creates a new Lark notifier
func NewLarkNotifier(client *lark.Client, chatID string, limiter rate.Limiter, log zerolog.Logger) repo.NotifierRepo {
	return &larkNotifier{client: client, chatID: chatID, limiter: limiter, log: log}
}

// SendAlert pushes a per-message notification to the chat
func (n *larkNotifier) SendAlert(ctx context.Context, msg *domain.Message, cls domain.Classification, senderGroup, reason string) error {
	text := formatAlert(msg, cls, senderGroup, reason)
	if err := n.send(ctx, text); err != nil {
		return err
	}
	n.log.Info().Str("message_id", msg.ID).Str("classification", cls.Label).Msg("alert sent")
	return nil
}

// SendDailyDigest pushes the rendered daily digest
func (n *larkNotifier) SendDailyDigest(ctx context.Context, text string) error {
	return n.send(ctx, text)
}

// SendWeeklyDigest pushes the rendered weekly digest
func (n *larkNotifier) SendWeeklyDigest(ctx context.Context, text string) error {
	return n.send(ctx, text)
}

// SendMonthlyDigest pushes the rendered monthly digest
func (n *larkNotifier) SendMonthlyDigest(ctx context.Context, text string) error {
	return n.send(ctx, text)
}

// Ping verifies the chat service is reachable
func (n *larkNotifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx)
}

func (n *larkNotifier) send(ctx context.Context, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	return n.client.SendText(ctx, n.chatID, text)
}

// formatAlert renders the per-message notification text
func formatAlert(msg *domain.Message, cls domain.Classification, senderGroup, reason string) string {
	header, icon := "Correo NUEVO", "📧"
	switch cls.Label {
	case domain.LabelUrgent:
		header, icon = "Correo URGENTE", "🚨"
	case domain.LabelImportant:
		header, icon = "Correo IMPORTANTE", "⚠️"
	}

	groupInfo := ""
	if senderGroup != domain.LabelOther {
		groupInfo = fmt.Sprintf(" (%s)", senderGroup)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n\n", icon, header)
	fmt.Fprintf(&sb, "De: %s%s\n", msg.Sender, groupInfo)
	fmt.Fprintf(&sb, "Asunto: %s\n", msg.Subject)
	fmt.Fprintf(&sb, "Clasificación: %s\n", cls.Label)
	if reason != "" {
		fmt.Fprintf(&sb, "Motivo: %s\n", reason)
	}
	if snippet := msg.Snippet(150); snippet != "" {
		fmt.Fprintf(&sb, "\nVista previa:\n%s\n", snippet)
	}
	fmt.Fprintf(&sb, "\nRecibido: %s", time.Now().Format("15:04:05"))
	return sb.String()
}
