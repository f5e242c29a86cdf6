package domain

import (
	"fmt"
	"strings"
)

// PolicyConfig holds the notification criteria configuration
type PolicyConfig struct {
	Keywords []string // substrings that trigger an alert
	Domains  []string // sender domains that trigger an alert
}

// Decision is the outcome of evaluating the notification policy.
// Reasons are ordered by display precedence: classification, sender
// group, keyword, domain.
type Decision struct {
	Notify  bool
	Reasons []string
}

// Reason returns the highest-precedence reason, or "" when Notify is false
func (d Decision) Reason() string {
	if len(d.Reasons) == 0 {
		return ""
	}
	return d.Reasons[0]
}

// EvaluatePolicy checks all four notification criteria independently.
// Any single criterion is enough to trigger an alert.
func EvaluatePolicy(msg *Message, cls Classification, senderGroup string, cfg PolicyConfig) Decision {
	var d Decision

	if cls.Label != LabelOther {
		d.Reasons = append(d.Reasons, fmt.Sprintf("clasificación: %s", cls.Label))
	}

	if senderGroup != LabelOther {
		d.Reasons = append(d.Reasons, fmt.Sprintf("grupo: %s", senderGroup))
	}

	if kw := matchKeyword(msg, cfg.Keywords); kw != "" {
		d.Reasons = append(d.Reasons, fmt.Sprintf("palabra clave: %s", kw))
	}

	if matchDomain(msg.SenderDomain, cfg.Domains) {
		d.Reasons = append(d.Reasons, fmt.Sprintf("dominio: %s", msg.SenderDomain))
	}

	d.Notify = len(d.Reasons) > 0
	return d
}

func matchKeyword(msg *Message, keywords []string) string {
	text := strings.ToLower(msg.Subject + " " + msg.Body)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

func matchDomain(domain string, allowlist []string) bool {
	for _, d := range allowlist {
		if strings.EqualFold(strings.TrimSpace(d), domain) {
			return true
		}
	}
	return false
}
