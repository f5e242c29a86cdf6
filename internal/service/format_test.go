package service

import (
	"strings"
	"testing"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
)

func TestFormatDailyDigest(t *testing.T) {
	records := []*domain.DailyRecord{
		{Sender: "boss@corp.com", SenderDomain: "corp.com", Recipient: "me@x.com", Time: "09:10:00", Classification: domain.LabelUrgent, SenderGroup: "Trabajo", Priority: "Alta", BodyLength: 100},
		{Sender: "shop@store.com", SenderDomain: "store.com", Recipient: "me@x.com", Time: "14:00:00", Classification: domain.LabelOther, SenderGroup: domain.LabelOther, Priority: "Normal", BodyLength: 50},
	}
	d := domain.BuildDailyDigest("2026-09-01", records)

	text := FormatDailyDigest(d)

	for _, want := range []string{
		"Resumen Diario** - 2026-09-01",
		"Total de correos: 2",
		"Urgentes: 1 (50.0%)",
		"Importantes: 0 (0.0%)",
		"Top Remitentes:",
		"• boss@corp.com: 1",
		"Por Categorías:",
		"• Urgente: 1",
		"Grupos Activos:",
		"• Trabajo: 1",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("daily digest missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "• Otros: 1\n\n👥") {
		t.Error("catch-all group leaked into active groups")
	}
}

func TestFormatDailyDigestTopSendersCapped(t *testing.T) {
	var records []*domain.DailyRecord
	for _, s := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"} {
		records = append(records, &domain.DailyRecord{
			Sender: s, SenderDomain: "x.com", Recipient: "me@x.com",
			Time: "09:00:00", Classification: domain.LabelOther,
			SenderGroup: domain.LabelOther, Priority: "Normal",
		})
	}
	text := FormatDailyDigest(domain.BuildDailyDigest("2026-09-01", records))

	if strings.Contains(text, "d@x.com") {
		t.Errorf("top senders not capped at 3:\n%s", text)
	}
}

func TestFormatWeeklyDigest(t *testing.T) {
	days := []*domain.DayStats{
		{Date: "2026-08-31", TotalEmails: 10, UrgentEmails: 1},
		{Date: "2026-09-01", TotalEmails: 6, ImportantEmails: 2},
	}
	w := domain.BuildWeeklyDigest("2026-08-31", "2026-09-06", days)

	text := FormatWeeklyDigest(w)

	for _, want := range []string{
		"Resumen Semanal",
		"2026-08-31 → 2026-09-06",
		"Total de correos: 16",
		"Promedio diario: 8.0",
		"Día más activo: 2026-08-31",
		"• 2026-09-01: 6 correos",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("weekly digest missing %q:\n%s", want, text)
		}
	}
}

func TestFormatMonthlyDigest(t *testing.T) {
	days := []*domain.DayStats{
		{Date: "2026-08-03", TotalEmails: 4},
		{Date: "2026-08-20", TotalEmails: 9, UrgentEmails: 2},
	}
	m := domain.BuildMonthlyDigest(2026, 8, days)

	text := FormatMonthlyDigest(m)

	for _, want := range []string{
		"Resumen Mensual** - 2026-08",
		"Total de correos: 13",
		"Días con correo: 2",
		"Promedio diario: 6.5",
		"Día más activo: 2026-08-20",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("monthly digest missing %q:\n%s", want, text)
		}
	}
}
