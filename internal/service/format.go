package service

import (
	"fmt"
	"strings"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
)

// FormatDailyDigest renders the daily digest as chat text
func FormatDailyDigest(d *domain.DailyDigest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 **Resumen Diario** - %s\n\n", d.Date)
	fmt.Fprintf(&sb, "📧 Total de correos: %d\n", d.TotalEmails)
	fmt.Fprintf(&sb, "🚨 Urgentes: %d (%.1f%%)\n", d.UrgentCount, d.PercentUrgent)
	fmt.Fprintf(&sb, "⚠️ Importantes: %d (%.1f%%)\n", d.ImportantCount, d.PercentImportant)
	fmt.Fprintf(&sb, "🕐 Hora más activa: %d:00\n", d.MostActiveHour)

	if len(d.Senders) > 0 {
		sb.WriteString("\n📬 **Top Remitentes:**\n")
		for _, s := range topN(d.Senders, 3) {
			fmt.Fprintf(&sb, "  • %s: %d\n", s.Label, s.Count)
		}
	}

	if len(d.Classifications) > 0 {
		sb.WriteString("\n🏷️ **Por Categorías:**\n")
		for _, c := range d.Classifications {
			fmt.Fprintf(&sb, "  • %s: %d\n", c.Label, c.Count)
		}
	}

	groups := activeGroups(d.SenderGroups)
	if len(groups) > 0 {
		sb.WriteString("\n👥 **Grupos Activos:**\n")
		for _, g := range groups {
			fmt.Fprintf(&sb, "  • %s: %d\n", g.Label, g.Count)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatWeeklyDigest renders the weekly digest as chat text
func FormatWeeklyDigest(w *domain.WeeklyDigest) string {
	var sb strings.Builder

	sb.WriteString("📅 **Resumen Semanal**\n")
	fmt.Fprintf(&sb, "📆 %s → %s\n\n", w.WeekStart, w.WeekEnd)
	fmt.Fprintf(&sb, "📧 Total de correos: %d\n", w.TotalEmails)
	fmt.Fprintf(&sb, "🚨 Urgentes: %d\n", w.TotalUrgent)
	fmt.Fprintf(&sb, "⚠️ Importantes: %d\n", w.TotalImportant)
	fmt.Fprintf(&sb, "📊 Promedio diario: %.1f\n", w.AvgDailyEmails)
	fmt.Fprintf(&sb, "🔥 Día más activo: %s\n", w.BusiestDay)

	if len(w.DailyBreakdown) > 0 {
		sb.WriteString("\n📈 **Actividad Diaria:**\n")
		for _, day := range w.DailyBreakdown {
			fmt.Fprintf(&sb, "  • %s: %d correos\n", day.Date, day.TotalEmails)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatMonthlyDigest renders the monthly digest as chat text
func FormatMonthlyDigest(m *domain.MonthlyDigest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🗓️ **Resumen Mensual** - %04d-%02d\n\n", m.Year, m.Month)
	fmt.Fprintf(&sb, "📧 Total de correos: %d\n", m.TotalEmails)
	fmt.Fprintf(&sb, "🚨 Urgentes: %d\n", m.TotalUrgent)
	fmt.Fprintf(&sb, "⚠️ Importantes: %d\n", m.TotalImportant)
	fmt.Fprintf(&sb, "📅 Días con correo: %d\n", m.DaysWithEmails)
	fmt.Fprintf(&sb, "📊 Promedio diario: %.1f\n", m.AvgDailyEmails)
	fmt.Fprintf(&sb, "🔥 Día más activo: %s", m.BusiestDay)

	return sb.String()
}

func topN(entries []domain.LabelCount, n int) []domain.LabelCount {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

// activeGroups drops the catch-all bucket from the group breakdown
func activeGroups(groups []domain.LabelCount) []domain.LabelCount {
	var out []domain.LabelCount
	for _, g := range groups {
		if g.Label == domain.LabelOther || g.Count == 0 {
			continue
		}
		out = append(out, g)
	}
	return out
}
