package data

import (
	"testing"
	"time"

	"github.com/mailwatch/mailwatch/internal/infra/imapmail"
)

func TestToDomainMessageStableFallbackID(t *testing.T) {
	m := &imapmail.Message{
		UID:      42,
		From:     "Boss <boss@corp.com>",
		Subject:  "sin identificador",
		TextBody: "cuerpo",
		Date:     time.Now(),
	}

	first := toDomainMessage(m, "me@example.com")
	second := toDomainMessage(m, "me@example.com")

	if first.ID != "uid-42" {
		t.Errorf("fallback ID = %q, want uid-42", first.ID)
	}
	if first.ID != second.ID {
		t.Errorf("fallback ID changed between fetches: %q vs %q", first.ID, second.ID)
	}
}

func TestToDomainMessageMapping(t *testing.T) {
	m := &imapmail.Message{
		UID:       7,
		MessageID: "<abc@corp.com>",
		InReplyTo: "<root@corp.com>",
		From:      "Boss <Boss@Corp.com>",
		Subject:   "  asunto\n con   saltos ",
		TextBody:  "línea uno\nlínea  dos",
	}

	got := toDomainMessage(m, "me@example.com")

	if got.ID != "<abc@corp.com>" {
		t.Errorf("ID = %q, want the Message-ID header", got.ID)
	}
	if got.ThreadID != "<root@corp.com>" {
		t.Errorf("ThreadID = %q", got.ThreadID)
	}
	if got.Sender != "Boss@Corp.com" {
		t.Errorf("Sender = %q, want the bare address", got.Sender)
	}
	if got.SenderDomain != "corp.com" {
		t.Errorf("SenderDomain = %q", got.SenderDomain)
	}
	if got.Recipient != "me@example.com" {
		t.Errorf("Recipient = %q, want the account fallback", got.Recipient)
	}
	if got.Subject != "asunto con saltos" {
		t.Errorf("Subject = %q, want normalized whitespace", got.Subject)
	}
	if got.Body != "línea uno línea dos" {
		t.Errorf("Body = %q, want normalized whitespace", got.Body)
	}
}
