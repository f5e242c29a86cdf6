package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
	"github.com/mailwatch/mailwatch/internal/biz/repo"
	"github.com/mailwatch/mailwatch/internal/biz/usecase"
)

// Scheduler fires the calendar jobs: the daily digest at the configured
// time, the weekly digest on Sunday evening, the monthly digest on the
// first day of the month, retention cleanup, and hourly health probes.
type Scheduler struct {
	digestUC *usecase.DigestUsecase
	notifier repo.NotifierRepo
	mailbox  repo.MailboxRepo
	mailer   repo.MailerRepo // nil when the email channel is off

	summaryHour   int
	summaryMinute int
	cleanupDays   int

	tick time.Duration
	now  func() time.Time
	log  zerolog.Logger

	// done-markers so each job fires at most once per period
	lastDaily   string
	lastWeekly  string
	lastMonthly string
	lastCleanup string
	lastHealth  string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates the calendar scheduler. summaryTime is "HH:MM".
func NewScheduler(
	digestUC *usecase.DigestUsecase,
	notifier repo.NotifierRepo,
	mailbox repo.MailboxRepo,
	mailer repo.MailerRepo,
	summaryTime string,
	cleanupDays int,
	log zerolog.Logger,
) *Scheduler {
	hour, minute := 21, 0
	if t, err := time.Parse("15:04", summaryTime); err == nil {
		hour, minute = t.Hour(), t.Minute()
	}
	if cleanupDays <= 0 {
		cleanupDays = 30
	}
	return &Scheduler{
		digestUC:      digestUC,
		notifier:      notifier,
		mailbox:       mailbox,
		mailer:        mailer,
		summaryHour:   hour,
		summaryMinute: minute,
		cleanupDays:   cleanupDays,
		tick:          30 * time.Second,
		now:           time.Now,
		log:           log,
	}
}

// Start begins the scheduling loop until Stop is called
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop()
	s.log.Info().
		Str("summary_time", fmt.Sprintf("%02d:%02d", s.summaryHour, s.summaryMinute)).
		Msg("scheduler started")
}

// Stop halts the scheduling loop
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunDue(s.ctx)
		}
	}
}

// RunDue fires every job whose schedule has been reached
func (s *Scheduler) RunDue(ctx context.Context) {
	now := s.now()
	date := now.Format(domain.DateLayout)

	if s.dailyDue(now) {
		s.lastDaily = date
		// a restart after the summary time must not resend the digest
		if s.digestUC.AlreadySent(ctx, date) {
			s.log.Debug().Str("date", date).Msg("daily digest already delivered")
		} else {
			s.RunDaily(ctx, "")
		}
	}

	if s.weeklyDue(now) {
		weekStart, _ := domain.WeekBounds(now)
		s.lastWeekly = weekStart
		s.RunWeekly(ctx, now)
	}

	if s.monthlyDue(now) {
		s.lastMonthly = now.Format("2006-01")
		prev := now.AddDate(0, 0, -1)
		s.RunMonthly(ctx, prev.Year(), int(prev.Month()))
	}

	if now.Weekday() == time.Sunday && s.lastCleanup != date {
		s.lastCleanup = date
		s.digestUC.Cleanup(ctx, s.cleanupDays)
	}

	if key := now.Format("2006-01-02T15"); s.lastHealth != key {
		s.lastHealth = key
		s.healthCheck(ctx)
	}
}

func (s *Scheduler) dailyDue(now time.Time) bool {
	if s.lastDaily == now.Format(domain.DateLayout) {
		return false
	}
	return now.Hour() > s.summaryHour ||
		(now.Hour() == s.summaryHour && now.Minute() >= s.summaryMinute)
}

func (s *Scheduler) weeklyDue(now time.Time) bool {
	if now.Weekday() != time.Sunday || now.Hour() < 22 {
		return false
	}
	weekStart, _ := domain.WeekBounds(now)
	return s.lastWeekly != weekStart
}

func (s *Scheduler) monthlyDue(now time.Time) bool {
	if now.Day() != 1 || now.Hour() < 8 {
		return false
	}
	return s.lastMonthly != now.Format("2006-01")
}

// RunDaily generates and delivers the daily digest for a date
// ("" means today). The summary is flagged as sent once any channel
// delivered it.
func (s *Scheduler) RunDaily(ctx context.Context, date string) {
	digest := s.digestUC.Daily(ctx, date)
	if digest == nil {
		return
	}

	text := FormatDailyDigest(digest)
	sent := false
	if err := s.notifier.SendDailyDigest(ctx, text); err != nil {
		s.log.Warn().Err(err).Msg("daily digest chat delivery failed")
	} else {
		sent = true
	}
	if s.mailer != nil {
		subject := fmt.Sprintf("Resumen Diario - %s", digest.Date)
		if err := s.mailer.SendDigestEmail(ctx, subject, text); err != nil {
			s.log.Warn().Err(err).Msg("daily digest email delivery failed")
		} else {
			sent = true
		}
	}

	if sent {
		s.digestUC.MarkSent(ctx, digest.Date)
	}
}

// RunWeekly generates and delivers the digest of the week containing t
func (s *Scheduler) RunWeekly(ctx context.Context, t time.Time) {
	digest := s.digestUC.Weekly(ctx, t)
	if digest == nil {
		return
	}

	text := FormatWeeklyDigest(digest)
	if err := s.notifier.SendWeeklyDigest(ctx, text); err != nil {
		s.log.Warn().Err(err).Msg("weekly digest chat delivery failed")
	}
	if s.mailer != nil {
		subject := fmt.Sprintf("Resumen Semanal - %s", digest.WeekStart)
		if err := s.mailer.SendDigestEmail(ctx, subject, text); err != nil {
			s.log.Warn().Err(err).Msg("weekly digest email delivery failed")
		}
	}
}

// RunMonthly generates and delivers the digest of one calendar month
func (s *Scheduler) RunMonthly(ctx context.Context, year, month int) {
	digest := s.digestUC.Monthly(ctx, year, month)
	if digest == nil {
		return
	}

	text := FormatMonthlyDigest(digest)
	if err := s.notifier.SendMonthlyDigest(ctx, text); err != nil {
		s.log.Warn().Err(err).Msg("monthly digest chat delivery failed")
	}
	if s.mailer != nil {
		subject := fmt.Sprintf("Resumen Mensual - %04d-%02d", year, month)
		if err := s.mailer.SendDigestEmail(ctx, subject, text); err != nil {
			s.log.Warn().Err(err).Msg("monthly digest email delivery failed")
		}
	}
}

// healthCheck probes the dependencies. Degraded dependencies are
// logged, never fatal.
func (s *Scheduler) healthCheck(ctx context.Context) {
	if err := s.mailbox.Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("health: mailbox unreachable")
	}
	if err := s.digestUC.Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("health: stats store unreachable")
	}
	if err := s.notifier.Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("health: chat service unreachable")
	}
}
