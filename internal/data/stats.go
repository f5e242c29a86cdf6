package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
	"github.com/mailwatch/mailwatch/internal/biz/repo"
)

const statsSchema = `
CREATE TABLE IF NOT EXISTS email_stats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	time TEXT NOT NULL,
	sender TEXT NOT NULL,
	sender_domain TEXT NOT NULL,
	recipient TEXT NOT NULL,
	subject TEXT NOT NULL,
	classification TEXT NOT NULL,
	sender_group TEXT NOT NULL,
	priority TEXT NOT NULL,
	message_id TEXT UNIQUE NOT NULL,
	has_attachments BOOLEAN DEFAULT 0,
	body_length INTEGER DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS daily_stats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT UNIQUE NOT NULL,
	total_emails INTEGER DEFAULT 0,
	urgent_emails INTEGER DEFAULT 0,
	important_emails INTEGER DEFAULT 0,
	other_emails INTEGER DEFAULT 0,
	top_sender TEXT,
	top_domain TEXT,
	most_active_hour INTEGER,
	summary_sent BOOLEAN DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_email_stats_date ON email_stats(date);
CREATE INDEX IF NOT EXISTS idx_email_stats_message_id ON email_stats(message_id);
CREATE INDEX IF NOT EXISTS idx_email_stats_sender ON email_stats(sender);
CREATE INDEX IF NOT EXISTS idx_email_stats_classification ON email_stats(classification);
`

// statsRepo implements the stats repository over SQLite
type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo opens (or creates) the digest database
func NewStatsRepo(dbPath string) (repo.StatsRepo, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// single-statement upserts from two goroutines, serialize writes
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(statsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &statsRepo{db: db}, nil
}

// SaveRecord upserts a per-message record keyed by message_id
func (r *statsRepo) SaveRecord(ctx context.Context, rec *domain.DailyRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO email_stats
		(date, time, sender, sender_domain, recipient, subject,
		 classification, sender_group, priority, message_id,
		 has_attachments, body_length)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Date,
		rec.Time,
		rec.Sender,
		rec.SenderDomain,
		rec.Recipient,
		rec.Subject,
		rec.Classification,
		rec.SenderGroup,
		rec.Priority,
		rec.MessageID,
		rec.HasAttachments,
		rec.BodyLength,
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// RecordsForDay returns one date's records up to the cutoff time
func (r *statsRepo) RecordsForDay(ctx context.Context, date, cutoff string) ([]*domain.DailyRecord, error) {
	var records []*domain.DailyRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT id, date, time, sender, sender_domain, recipient, subject,
		       classification, sender_group, priority, message_id,
		       has_attachments, body_length
		FROM email_stats
		WHERE date = ? AND time <= ?
		ORDER BY time
	`, date, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	return records, nil
}

// SaveDayStats upserts the consolidated row for a date. The
// summary_sent flag of an existing row survives the upsert.
func (r *statsRepo) SaveDayStats(ctx context.Context, st *domain.DayStats) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_stats
		(date, total_emails, urgent_emails, important_emails, other_emails,
		 top_sender, top_domain, most_active_hour)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_emails = excluded.total_emails,
			urgent_emails = excluded.urgent_emails,
			important_emails = excluded.important_emails,
			other_emails = excluded.other_emails,
			top_sender = excluded.top_sender,
			top_domain = excluded.top_domain,
			most_active_hour = excluded.most_active_hour
	`,
		st.Date,
		st.TotalEmails,
		st.UrgentEmails,
		st.ImportantEmails,
		st.OtherEmails,
		st.TopSender,
		st.TopDomain,
		st.MostActiveHour,
	)
	if err != nil {
		return fmt.Errorf("failed to save day stats: %w", err)
	}
	return nil
}

// DayStatsRange returns consolidated rows with date in [start, end]
func (r *statsRepo) DayStatsRange(ctx context.Context, start, end string) ([]*domain.DayStats, error) {
	var stats []*domain.DayStats
	err := r.db.SelectContext(ctx, &stats, `
		SELECT id, date, total_emails, urgent_emails, important_emails,
		       other_emails, top_sender, top_domain, most_active_hour, summary_sent
		FROM daily_stats
		WHERE date BETWEEN ? AND ?
		ORDER BY date
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query day stats: %w", err)
	}
	return stats, nil
}

// DayStatsForMonth returns consolidated rows of one calendar month
func (r *statsRepo) DayStatsForMonth(ctx context.Context, year, month int) ([]*domain.DayStats, error) {
	var stats []*domain.DayStats
	prefix := fmt.Sprintf("%04d-%02d-%%", year, month)
	err := r.db.SelectContext(ctx, &stats, `
		SELECT id, date, total_emails, urgent_emails, important_emails,
		       other_emails, top_sender, top_domain, most_active_hour, summary_sent
		FROM daily_stats
		WHERE date LIKE ?
		ORDER BY date
	`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query month stats: %w", err)
	}
	return stats, nil
}

// MarkSummarySent sets the summary_sent flag for a date
func (r *statsRepo) MarkSummarySent(ctx context.Context, date string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE daily_stats SET summary_sent = 1 WHERE date = ?
	`, date)
	if err != nil {
		return fmt.Errorf("failed to mark summary sent: %w", err)
	}
	return nil
}

// DeleteRecordsBefore removes per-message records older than date
func (r *statsRepo) DeleteRecordsBefore(ctx context.Context, date string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM email_stats WHERE date < ?`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	return result.RowsAffected()
}

// DeleteDayStatsBefore removes consolidated rows older than date
func (r *statsRepo) DeleteDayStatsBefore(ctx context.Context, date string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM daily_stats WHERE date < ?`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete day stats: %w", err)
	}
	return result.RowsAffected()
}

// Ping verifies the database is usable
func (r *statsRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *statsRepo) Close() error {
	return r.db.Close()
}
