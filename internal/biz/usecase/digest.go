package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
	"github.com/mailwatch/mailwatch/internal/biz/repo"
)

// DigestUsecase owns the digest pipeline: durable per-message records,
// daily/weekly/monthly summaries, and retention cleanup.
type DigestUsecase struct {
	stats  repo.StatsRepo
	cutoff string // "HH:MM:SS" daily digest cutoff
	now    func() time.Time
	log    zerolog.Logger
}

// NewDigestUsecase creates the digest usecase. cutoff is the time of
// day up to which daily records are summarized, "HH:MM:SS".
func NewDigestUsecase(stats repo.StatsRepo, cutoff string, log zerolog.Logger) *DigestUsecase {
	if cutoff == "" {
		cutoff = "21:00:00"
	}
	return &DigestUsecase{stats: stats, cutoff: cutoff, now: time.Now, log: log}
}

// Record persists a processed message into the stats store. Recording
// is idempotent: the row is keyed by message ID. Returns false on
// storage failure so the caller retries on the next cycle.
func (u *DigestUsecase) Record(ctx context.Context, msg *domain.Message, cls domain.Classification, senderGroup string) bool {
	now := u.now()
	rec := &domain.DailyRecord{
		Date:           now.Format(domain.DateLayout),
		Time:           now.Format(domain.TimeLayout),
		Sender:         msg.Sender,
		SenderDomain:   msg.SenderDomain,
		Recipient:      msg.Recipient,
		Subject:        msg.Subject,
		Classification: cls.Label,
		SenderGroup:    senderGroup,
		Priority:       cls.Priority(),
		MessageID:      msg.ID,
		HasAttachments: msg.HasAttachments,
		BodyLength:     msg.BodyLength(),
	}

	if err := u.stats.SaveRecord(ctx, rec); err != nil {
		u.log.Warn().Err(err).Str("message_id", msg.ID).Msg("record failed")
		return false
	}
	return true
}

// Daily builds the daily digest for a date ("" means today) and
// persists the consolidated day row. Returns nil when the date has no
// records or the store is unreadable.
func (u *DigestUsecase) Daily(ctx context.Context, date string) *domain.DailyDigest {
	if date == "" {
		date = u.now().Format(domain.DateLayout)
	}

	records, err := u.stats.RecordsForDay(ctx, date, u.cutoff)
	if err != nil {
		u.log.Warn().Err(err).Str("date", date).Msg("reading daily records failed")
		return nil
	}

	digest := domain.BuildDailyDigest(date, records)
	if digest == nil {
		u.log.Info().Str("date", date).Msg("no records for daily digest")
		return nil
	}

	if err := u.stats.SaveDayStats(ctx, digest.Stats()); err != nil {
		u.log.Warn().Err(err).Str("date", date).Msg("saving day stats failed")
	}

	u.log.Info().Str("date", date).Int("total", digest.TotalEmails).Msg("daily digest generated")
	return digest
}

// Weekly builds the digest of the Monday-start week containing t
func (u *DigestUsecase) Weekly(ctx context.Context, t time.Time) *domain.WeeklyDigest {
	start, end := domain.WeekBounds(t)

	days, err := u.stats.DayStatsRange(ctx, start, end)
	if err != nil {
		u.log.Warn().Err(err).Str("week_start", start).Msg("reading weekly stats failed")
		return nil
	}

	digest := domain.BuildWeeklyDigest(start, end, days)
	if digest == nil {
		u.log.Info().Str("week_start", start).Msg("no data for weekly digest")
		return nil
	}

	u.log.Info().Str("week_start", start).Int("total", digest.TotalEmails).Msg("weekly digest generated")
	return digest
}

// Monthly builds the digest for one calendar month
func (u *DigestUsecase) Monthly(ctx context.Context, year, month int) *domain.MonthlyDigest {
	days, err := u.stats.DayStatsForMonth(ctx, year, month)
	if err != nil {
		u.log.Warn().Err(err).Int("year", year).Int("month", month).Msg("reading monthly stats failed")
		return nil
	}

	digest := domain.BuildMonthlyDigest(year, month, days)
	if digest == nil {
		u.log.Info().Int("year", year).Int("month", month).Msg("no data for monthly digest")
		return nil
	}
	return digest
}

// AlreadySent reports whether the daily summary of a date was already
// delivered, so a restarted process does not send it twice
func (u *DigestUsecase) AlreadySent(ctx context.Context, date string) bool {
	days, err := u.stats.DayStatsRange(ctx, date, date)
	if err != nil {
		u.log.Warn().Err(err).Str("date", date).Msg("reading summary sent flag failed")
		return false
	}
	return len(days) > 0 && days[0].SummarySent
}

// MarkSent flags the daily summary of a date as delivered. Idempotent.
func (u *DigestUsecase) MarkSent(ctx context.Context, date string) bool {
	if err := u.stats.MarkSummarySent(ctx, date); err != nil {
		u.log.Warn().Err(err).Str("date", date).Msg("mark summary sent failed")
		return false
	}
	return true
}

// Cleanup deletes per-message records older than retentionDays and
// consolidated rows older than twice that. Returns the deleted counts.
func (u *DigestUsecase) Cleanup(ctx context.Context, retentionDays int) (int64, int64) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	now := u.now()
	recordCutoff := now.AddDate(0, 0, -retentionDays).Format(domain.DateLayout)
	statsCutoff := now.AddDate(0, 0, -retentionDays*2).Format(domain.DateLayout)

	recordsDeleted, err := u.stats.DeleteRecordsBefore(ctx, recordCutoff)
	if err != nil {
		u.log.Warn().Err(err).Msg("record cleanup failed")
	}
	statsDeleted, err := u.stats.DeleteDayStatsBefore(ctx, statsCutoff)
	if err != nil {
		u.log.Warn().Err(err).Msg("day stats cleanup failed")
	}

	u.log.Info().
		Int64("records_deleted", recordsDeleted).
		Int64("stats_deleted", statsDeleted).
		Msg("cleanup completed")
	return recordsDeleted, statsDeleted
}

// Ping checks the stats store
func (u *DigestUsecase) Ping(ctx context.Context) error {
	return u.stats.Ping(ctx)
}
