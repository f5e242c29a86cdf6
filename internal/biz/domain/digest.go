package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the storage format for calendar dates
	DateLayout = "2006-01-02"
	// TimeLayout is the storage format for times of day
	TimeLayout = "15:04:05"
)

// DailyRecord is one processed message persisted for digest statistics
type DailyRecord struct {
	ID             int64  `db:"id"`
	Date           string `db:"date"`
	Time           string `db:"time"`
	Sender         string `db:"sender"`
	SenderDomain   string `db:"sender_domain"`
	Recipient      string `db:"recipient"`
	Subject        string `db:"subject"`
	Classification string `db:"classification"`
	SenderGroup    string `db:"sender_group"`
	Priority       string `db:"priority"`
	MessageID      string `db:"message_id"`
	HasAttachments bool   `db:"has_attachments"`
	BodyLength     int    `db:"body_length"`
}

// DayStats is the consolidated per-day statistics row
type DayStats struct {
	ID              int64  `db:"id"`
	Date            string `db:"date"`
	TotalEmails     int    `db:"total_emails"`
	UrgentEmails    int    `db:"urgent_emails"`
	ImportantEmails int    `db:"important_emails"`
	OtherEmails     int    `db:"other_emails"`
	TopSender       string `db:"top_sender"`
	TopDomain       string `db:"top_domain"`
	MostActiveHour  int    `db:"most_active_hour"`
	SummarySent     bool   `db:"summary_sent"`
}

// LabelCount is a tally entry ordered by count, first seen wins ties
type LabelCount struct {
	Label string
	Count int
}

// tally counts labels preserving first-seen order for tie breaking
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(label string) {
	if _, ok := t.counts[label]; !ok {
		t.order = append(t.order, label)
	}
	t.counts[label]++
}

func (t *tally) get(label string) int {
	return t.counts[label]
}

// top returns the n most frequent entries; n <= 0 returns all
func (t *tally) top(n int) []LabelCount {
	out := make([]LabelCount, 0, len(t.order))
	for _, label := range t.order {
		out = append(out, LabelCount{Label: label, Count: t.counts[label]})
	}
	// stable sort keeps first-seen order among equal counts
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Count > out[j-1].Count; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DailyDigest is the computed daily summary
type DailyDigest struct {
	Date             string
	TotalEmails      int
	Senders          []LabelCount
	Domains          []LabelCount
	Recipients       []LabelCount
	Classifications  []LabelCount
	SenderGroups     []LabelCount
	Priorities       []LabelCount
	HourlyActivity   map[int]int
	MostActiveHour   int
	TotalAttachments int
	AvgBodyLength    float64
	TopSender        string
	TopDomain        string
	UrgentCount      int
	ImportantCount   int
	OtherCount       int
	PercentUrgent    float64
	PercentImportant float64
}

// BuildDailyDigest computes the daily summary from the day's records.
// Returns nil when there are no records.
func BuildDailyDigest(date string, records []*DailyRecord) *DailyDigest {
	if len(records) == 0 {
		return nil
	}

	senders := newTally()
	domains := newTally()
	recipients := newTally()
	classifications := newTally()
	senderGroups := newTally()
	priorities := newTally()

	hourly := make(map[int]int)
	totalAttachments := 0
	totalBodyLength := 0

	for _, rec := range records {
		senders.add(rec.Sender)
		domains.add(rec.SenderDomain)
		recipients.add(rec.Recipient)
		classifications.add(rec.Classification)
		senderGroups.add(rec.SenderGroup)
		priorities.add(rec.Priority)

		if hour, ok := hourOf(rec.Time); ok {
			hourly[hour]++
		}

		if rec.HasAttachments {
			totalAttachments++
		}
		totalBodyLength += rec.BodyLength
	}

	total := len(records)

	d := &DailyDigest{
		Date:             date,
		TotalEmails:      total,
		Senders:          senders.top(10),
		Domains:          domains.top(10),
		Recipients:       recipients.top(10),
		Classifications:  classifications.top(0),
		SenderGroups:     senderGroups.top(0),
		Priorities:       priorities.top(0),
		HourlyActivity:   hourly,
		MostActiveHour:   mostActiveHour(hourly),
		TotalAttachments: totalAttachments,
		AvgBodyLength:    round1(float64(totalBodyLength) / float64(total)),
		TopSender:        topLabel(senders),
		TopDomain:        topLabel(domains),
		UrgentCount:      classifications.get(LabelUrgent),
		ImportantCount:   classifications.get(LabelImportant),
		OtherCount:       classifications.get(LabelOther),
	}
	d.PercentUrgent = round1(float64(d.UrgentCount) / float64(total) * 100)
	d.PercentImportant = round1(float64(d.ImportantCount) / float64(total) * 100)
	return d
}

// Stats converts the digest into the consolidated per-day row
func (d *DailyDigest) Stats() *DayStats {
	return &DayStats{
		Date:            d.Date,
		TotalEmails:     d.TotalEmails,
		UrgentEmails:    d.UrgentCount,
		ImportantEmails: d.ImportantCount,
		OtherEmails:     d.OtherCount,
		TopSender:       d.TopSender,
		TopDomain:       d.TopDomain,
		MostActiveHour:  d.MostActiveHour,
	}
}

// WeeklyDigest aggregates the consolidated stats of one Monday-start week
type WeeklyDigest struct {
	WeekStart      string
	WeekEnd        string
	TotalEmails    int
	TotalUrgent    int
	TotalImportant int
	TotalOther     int
	DailyBreakdown []*DayStats
	AvgDailyEmails float64
	BusiestDay     string
}

// WeekBounds returns the Monday and Sunday of the week containing t
func WeekBounds(t time.Time) (string, string) {
	offset := (int(t.Weekday()) + 6) % 7
	start := t.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)
	return start.Format(DateLayout), end.Format(DateLayout)
}

// BuildWeeklyDigest sums per-day stats; days must be date ordered.
// Returns nil when there are no rows.
func BuildWeeklyDigest(weekStart, weekEnd string, days []*DayStats) *WeeklyDigest {
	if len(days) == 0 {
		return nil
	}

	w := &WeeklyDigest{
		WeekStart:      weekStart,
		WeekEnd:        weekEnd,
		DailyBreakdown: days,
	}
	for _, day := range days {
		w.TotalEmails += day.TotalEmails
		w.TotalUrgent += day.UrgentEmails
		w.TotalImportant += day.ImportantEmails
		w.TotalOther += day.OtherEmails
	}
	w.AvgDailyEmails = round1(float64(w.TotalEmails) / float64(len(days)))
	w.BusiestDay = busiestDay(days)
	return w
}

// MonthlyDigest aggregates the consolidated stats of one calendar month
type MonthlyDigest struct {
	Year           int
	Month          int
	TotalEmails    int
	TotalUrgent    int
	TotalImportant int
	TotalOther     int
	DaysWithEmails int
	AvgDailyEmails float64
	BusiestDay     string
}

// BuildMonthlyDigest sums per-day stats for a month; nil when empty
func BuildMonthlyDigest(year, month int, days []*DayStats) *MonthlyDigest {
	if len(days) == 0 {
		return nil
	}

	m := &MonthlyDigest{
		Year:           year,
		Month:          month,
		DaysWithEmails: len(days),
	}
	for _, day := range days {
		m.TotalEmails += day.TotalEmails
		m.TotalUrgent += day.UrgentEmails
		m.TotalImportant += day.ImportantEmails
		m.TotalOther += day.OtherEmails
	}
	m.AvgDailyEmails = round1(float64(m.TotalEmails) / float64(len(days)))
	m.BusiestDay = busiestDay(days)
	return m
}

func busiestDay(days []*DayStats) string {
	busiest := days[0]
	for _, day := range days[1:] {
		if day.TotalEmails > busiest.TotalEmails {
			busiest = day
		}
	}
	return busiest.Date
}

// mostActiveHour picks the argmax of the histogram, smallest hour on
// ties, 12 when no record had a parseable hour
func mostActiveHour(hourly map[int]int) int {
	if len(hourly) == 0 {
		return 12
	}
	best, bestCount := -1, -1
	for hour := 0; hour < 24; hour++ {
		if count, ok := hourly[hour]; ok && count > bestCount {
			best, bestCount = hour, count
		}
	}
	return best
}

func hourOf(timeStr string) (int, bool) {
	parts := strings.SplitN(timeStr, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

func topLabel(t *tally) string {
	top := t.top(1)
	if len(top) == 0 {
		return "N/A"
	}
	return top[0].Label
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
