package domain

import (
	"strings"
	"time"
)

// Canonical classification labels
const (
	LabelUrgent    = "Urgente"
	LabelImportant = "Importante"
	LabelOther     = "Otros"
)

// Message represents a decoded inbox message
type Message struct {
	ID             string // Message-ID header, or a generated fallback
	UID            uint32 // mailbox UID, used for flag updates
	ThreadID       string // In-Reply-To header, empty for new threads
	Sender         string
	SenderDomain   string
	Recipient      string
	Subject        string
	Body           string
	Date           time.Time
	HasAttachments bool
}

// BodyLength returns the length of the normalized body in runes
func (m *Message) BodyLength() int {
	return len([]rune(m.Body))
}

// Snippet returns the first n runes of the body
func (m *Message) Snippet(n int) string {
	runes := []rune(m.Body)
	if len(runes) <= n {
		return m.Body
	}
	return string(runes[:n]) + "..."
}

// Classification is a label assigned to a message with its confidence
type Classification struct {
	Label      string
	Confidence float64
}

// Priority maps a classification to a priority bucket
func (c Classification) Priority() string {
	switch c.Label {
	case LabelUrgent:
		return "Alta"
	case LabelImportant:
		return "Media"
	default:
		return "Normal"
	}
}

// NormalizeText collapses all whitespace runs into single spaces
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DomainOf extracts the lowercase domain from an email address.
// Handles the "Name <addr@domain>" form; returns "unknown" when no
// domain can be extracted.
func DomainOf(address string) string {
	addr := BareAddress(address)
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return "unknown"
	}
	return strings.ToLower(addr[at+1:])
}

// BareAddress strips the display-name wrapper from an address
func BareAddress(address string) string {
	if open := strings.Index(address, "<"); open >= 0 {
		if end := strings.Index(address[open:], ">"); end > 0 {
			return strings.TrimSpace(address[open+1 : open+end])
		}
	}
	return strings.TrimSpace(address)
}
