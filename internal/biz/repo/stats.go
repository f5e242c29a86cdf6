package repo

import (
	"context"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
)

// StatsRepo owns the digest storage. No other component touches the
// underlying tables.
type StatsRepo interface {
	// SaveRecord upserts a per-message record keyed by message ID
	SaveRecord(ctx context.Context, rec *domain.DailyRecord) error

	// RecordsForDay returns the records of one date with time <= cutoff,
	// ordered by time. cutoff is "HH:MM:SS".
	RecordsForDay(ctx context.Context, date, cutoff string) ([]*domain.DailyRecord, error)

	// SaveDayStats upserts the consolidated row keyed by date
	SaveDayStats(ctx context.Context, st *domain.DayStats) error

	// DayStatsRange returns consolidated rows with date in [start, end],
	// ordered by date
	DayStatsRange(ctx context.Context, start, end string) ([]*domain.DayStats, error)

	// DayStatsForMonth returns consolidated rows of one calendar month
	DayStatsForMonth(ctx context.Context, year, month int) ([]*domain.DayStats, error)

	// MarkSummarySent sets the summary_sent flag for a date
	MarkSummarySent(ctx context.Context, date string) error

	// DeleteRecordsBefore removes per-message records older than date
	DeleteRecordsBefore(ctx context.Context, date string) (int64, error)

	// DeleteDayStatsBefore removes consolidated rows older than date
	DeleteDayStatsBefore(ctx context.Context, date string) (int64, error)

	// Ping verifies the store is usable
	Ping(ctx context.Context) error

	Close() error
}
