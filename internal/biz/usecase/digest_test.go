package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
)

type mockStatsRepo struct {
	records    map[string]*domain.DailyRecord // keyed by message ID
	dayStats   map[string]*domain.DayStats    // keyed by date
	saveErr    error
	readErr    error
	sentDates  []string
	recDeleted int64
	stDeleted  int64
}

func newMockStatsRepo() *mockStatsRepo {
	return &mockStatsRepo{
		records:  make(map[string]*domain.DailyRecord),
		dayStats: make(map[string]*domain.DayStats),
	}
}

func (m *mockStatsRepo) SaveRecord(ctx context.Context, rec *domain.DailyRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[rec.MessageID] = rec
	return nil
}

func (m *mockStatsRepo) RecordsForDay(ctx context.Context, date, cutoff string) ([]*domain.DailyRecord, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []*domain.DailyRecord
	for _, rec := range m.records {
		if rec.Date == date && rec.Time <= cutoff {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockStatsRepo) SaveDayStats(ctx context.Context, st *domain.DayStats) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.dayStats[st.Date] = st
	return nil
}

func (m *mockStatsRepo) DayStatsRange(ctx context.Context, start, end string) ([]*domain.DayStats, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []*domain.DayStats
	for date, st := range m.dayStats {
		if date >= start && date <= end {
			out = append(out, st)
		}
	}
	return out, nil
}

func (m *mockStatsRepo) DayStatsForMonth(ctx context.Context, year, month int) ([]*domain.DayStats, error) {
	return nil, m.readErr
}

func (m *mockStatsRepo) MarkSummarySent(ctx context.Context, date string) error {
	m.sentDates = append(m.sentDates, date)
	return nil
}

func (m *mockStatsRepo) DeleteRecordsBefore(ctx context.Context, date string) (int64, error) {
	for id, rec := range m.records {
		if rec.Date < date {
			delete(m.records, id)
			m.recDeleted++
		}
	}
	return m.recDeleted, nil
}

func (m *mockStatsRepo) DeleteDayStatsBefore(ctx context.Context, date string) (int64, error) {
	for d := range m.dayStats {
		if d < date {
			delete(m.dayStats, d)
			m.stDeleted++
		}
	}
	return m.stDeleted, nil
}

func (m *mockStatsRepo) Ping(ctx context.Context) error { return nil }
func (m *mockStatsRepo) Close() error                   { return nil }

func testMessage(id string) *domain.Message {
	return &domain.Message{
		ID:           id,
		Sender:       "a@b.com",
		SenderDomain: "b.com",
		Recipient:    "me@example.com",
		Subject:      "asunto",
		Body:         "cuerpo del mensaje",
	}
}

func TestRecordIdempotent(t *testing.T) {
	stats := newMockStatsRepo()
	uc := NewDigestUsecase(stats, "21:00:00", zerolog.Nop())

	msg := testMessage("msg-1")
	cls := domain.Classification{Label: domain.LabelUrgent}

	if !uc.Record(context.Background(), msg, cls, "Trabajo") {
		t.Fatal("first record failed")
	}
	if !uc.Record(context.Background(), msg, cls, "Trabajo") {
		t.Fatal("second record failed")
	}
	if len(stats.records) != 1 {
		t.Errorf("records = %d, want 1 (upsert)", len(stats.records))
	}

	rec := stats.records["msg-1"]
	if rec.Priority != "Alta" {
		t.Errorf("Priority = %q, want Alta", rec.Priority)
	}
}

func TestRecordStorageFailure(t *testing.T) {
	stats := newMockStatsRepo()
	stats.saveErr = errors.New("disk full")
	uc := NewDigestUsecase(stats, "21:00:00", zerolog.Nop())

	if uc.Record(context.Background(), testMessage("msg-1"), domain.Classification{Label: domain.LabelOther}, domain.LabelOther) {
		t.Error("expected false on storage failure")
	}
}

func TestDailyEmpty(t *testing.T) {
	uc := NewDigestUsecase(newMockStatsRepo(), "21:00:00", zerolog.Nop())
	if d := uc.Daily(context.Background(), "2026-09-01"); d != nil {
		t.Errorf("expected nil digest, got %+v", d)
	}
}

func TestDailyReadFailureReturnsNil(t *testing.T) {
	stats := newMockStatsRepo()
	stats.readErr = errors.New("locked")
	uc := NewDigestUsecase(stats, "21:00:00", zerolog.Nop())
	if d := uc.Daily(context.Background(), "2026-09-01"); d != nil {
		t.Error("expected nil digest on read failure")
	}
}

func TestDailySavesConsolidatedStats(t *testing.T) {
	stats := newMockStatsRepo()
	stats.records["m1"] = &domain.DailyRecord{
		Date: "2026-09-01", Time: "09:00:00", Sender: "a@b.com", SenderDomain: "b.com",
		Recipient: "me@x.com", Classification: domain.LabelUrgent, SenderGroup: domain.LabelOther,
		Priority: "Alta", MessageID: "m1",
	}
	stats.records["m2"] = &domain.DailyRecord{
		Date: "2026-09-01", Time: "22:30:00", Sender: "c@d.com", SenderDomain: "d.com",
		Recipient: "me@x.com", Classification: domain.LabelOther, SenderGroup: domain.LabelOther,
		Priority: "Normal", MessageID: "m2",
	}

	uc := NewDigestUsecase(stats, "21:00:00", zerolog.Nop())
	d := uc.Daily(context.Background(), "2026-09-01")
	if d == nil {
		t.Fatal("expected digest")
	}
	// the 22:30 record is past the cutoff
	if d.TotalEmails != 1 {
		t.Errorf("TotalEmails = %d, want 1", d.TotalEmails)
	}

	st := stats.dayStats["2026-09-01"]
	if st == nil {
		t.Fatal("expected consolidated day stats")
	}
	if st.UrgentEmails != 1 {
		t.Errorf("UrgentEmails = %d, want 1", st.UrgentEmails)
	}
}

func TestWeeklySumsWindowOnly(t *testing.T) {
	stats := newMockStatsRepo()
	stats.dayStats["2026-08-31"] = &domain.DayStats{Date: "2026-08-31", TotalEmails: 10}
	stats.dayStats["2026-09-02"] = &domain.DayStats{Date: "2026-09-02", TotalEmails: 6}
	stats.dayStats["2026-09-08"] = &domain.DayStats{Date: "2026-09-08", TotalEmails: 99} // next week

	uc := NewDigestUsecase(stats, "21:00:00", zerolog.Nop())
	wed := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)

	w := uc.Weekly(context.Background(), wed)
	if w == nil {
		t.Fatal("expected weekly digest")
	}
	if w.TotalEmails != 16 {
		t.Errorf("TotalEmails = %d, want 16", w.TotalEmails)
	}
	if w.AvgDailyEmails != 8.0 {
		t.Errorf("AvgDailyEmails = %v, want 8.0", w.AvgDailyEmails)
	}
}

func TestCleanupRetentionWindows(t *testing.T) {
	stats := newMockStatsRepo()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	stats.records["old"] = &domain.DailyRecord{Date: "2026-07-01", MessageID: "old"}
	stats.records["new"] = &domain.DailyRecord{Date: "2026-08-25", MessageID: "new"}
	stats.dayStats["2026-06-01"] = &domain.DayStats{Date: "2026-06-01"}
	stats.dayStats["2026-07-15"] = &domain.DayStats{Date: "2026-07-15"}

	uc := NewDigestUsecase(stats, "21:00:00", zerolog.Nop())
	uc.now = func() time.Time { return now }

	recDeleted, stDeleted := uc.Cleanup(context.Background(), 30)
	if recDeleted != 1 {
		t.Errorf("records deleted = %d, want 1", recDeleted)
	}
	if stDeleted != 1 {
		t.Errorf("day stats deleted = %d, want 1 (60-day window)", stDeleted)
	}
	if _, ok := stats.records["new"]; !ok {
		t.Error("recent record was deleted")
	}
	if _, ok := stats.dayStats["2026-07-15"]; !ok {
		t.Error("day stats inside the 60-day window was deleted")
	}
}

func TestMarkSent(t *testing.T) {
	stats := newMockStatsRepo()
	uc := NewDigestUsecase(stats, "21:00:00", zerolog.Nop())

	if !uc.MarkSent(context.Background(), "2026-09-01") {
		t.Fatal("MarkSent failed")
	}
	if len(stats.sentDates) != 1 || stats.sentDates[0] != "2026-09-01" {
		t.Errorf("sentDates = %v", stats.sentDates)
	}
}

func TestAlreadySent(t *testing.T) {
	stats := newMockStatsRepo()
	uc := NewDigestUsecase(stats, "21:00:00", zerolog.Nop())
	ctx := context.Background()

	if uc.AlreadySent(ctx, "2026-09-01") {
		t.Error("AlreadySent = true for a date with no stats row")
	}

	stats.dayStats["2026-09-01"] = &domain.DayStats{Date: "2026-09-01", TotalEmails: 3}
	if uc.AlreadySent(ctx, "2026-09-01") {
		t.Error("AlreadySent = true before the summary was delivered")
	}

	stats.dayStats["2026-09-01"].SummarySent = true
	if !uc.AlreadySent(ctx, "2026-09-01") {
		t.Error("AlreadySent = false after the summary was delivered")
	}

	stats.readErr = errors.New("db locked")
	if uc.AlreadySent(ctx, "2026-09-01") {
		t.Error("AlreadySent must report false when the flag is unreadable")
	}
}
