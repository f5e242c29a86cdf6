package domain

import (
	"strings"
	"testing"
)

func TestEvaluatePolicyNoCriteria(t *testing.T) {
	msg := &Message{
		Sender:       "someone@random.com",
		SenderDomain: "random.com",
		Subject:      "hola",
		Body:         "nada especial",
	}
	cfg := PolicyConfig{Keywords: []string{"factura"}, Domains: []string{"work.com"}}

	d := EvaluatePolicy(msg, Classification{Label: LabelOther}, LabelOther, cfg)
	if d.Notify {
		t.Errorf("expected no notification, got reasons %v", d.Reasons)
	}
	if d.Reason() != "" {
		t.Errorf("Reason() = %q, want empty", d.Reason())
	}
}

func TestEvaluatePolicyGroupMatchOnly(t *testing.T) {
	msg := &Message{
		Sender:       "boss@work.com",
		SenderDomain: "work.com",
		Subject:      "reunión",
		Body:         "nos vemos mañana",
	}
	cfg := PolicyConfig{Keywords: []string{"factura"}, Domains: []string{"banco.com"}}

	d := EvaluatePolicy(msg, Classification{Label: LabelOther}, "Trabajo", cfg)
	if !d.Notify {
		t.Fatal("expected notification for group match")
	}
	if !strings.Contains(d.Reason(), "grupo") {
		t.Errorf("Reason() = %q, want group reason", d.Reason())
	}
}

func TestEvaluatePolicyReasonPrecedence(t *testing.T) {
	msg := &Message{
		Sender:       "boss@work.com",
		SenderDomain: "work.com",
		Subject:      "factura urgente",
		Body:         "pago pendiente",
	}
	cfg := PolicyConfig{Keywords: []string{"factura"}, Domains: []string{"work.com"}}

	d := EvaluatePolicy(msg, Classification{Label: LabelUrgent}, "Trabajo", cfg)
	if !d.Notify {
		t.Fatal("expected notification")
	}
	if len(d.Reasons) != 4 {
		t.Fatalf("expected all 4 reasons, got %v", d.Reasons)
	}
	if !strings.Contains(d.Reasons[0], "clasificación") {
		t.Errorf("first reason %q, want classification", d.Reasons[0])
	}
	if !strings.Contains(d.Reasons[1], "grupo") {
		t.Errorf("second reason %q, want group", d.Reasons[1])
	}
	if !strings.Contains(d.Reasons[2], "palabra clave") {
		t.Errorf("third reason %q, want keyword", d.Reasons[2])
	}
	if !strings.Contains(d.Reasons[3], "dominio") {
		t.Errorf("fourth reason %q, want domain", d.Reasons[3])
	}
}

func TestEvaluatePolicyKeywordCaseInsensitive(t *testing.T) {
	msg := &Message{
		Sender:       "x@y.com",
		SenderDomain: "y.com",
		Subject:      "FACTURA adjunta",
		Body:         "",
	}
	cfg := PolicyConfig{Keywords: []string{"factura"}}

	d := EvaluatePolicy(msg, Classification{Label: LabelOther}, LabelOther, cfg)
	if !d.Notify {
		t.Error("expected keyword match regardless of case")
	}
}

func TestEvaluatePolicyDomainMatch(t *testing.T) {
	msg := &Message{
		Sender:       "alerts@banco.com",
		SenderDomain: "banco.com",
		Subject:      "saldo",
		Body:         "",
	}
	cfg := PolicyConfig{Domains: []string{"Banco.com"}}

	d := EvaluatePolicy(msg, Classification{Label: LabelOther}, LabelOther, cfg)
	if !d.Notify {
		t.Fatal("expected notification for allowlisted domain")
	}
	if !strings.Contains(d.Reason(), "dominio") {
		t.Errorf("Reason() = %q, want domain reason", d.Reason())
	}
}
