package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/usecase"
	"github.com/mailwatch/mailwatch/internal/conf"
	"github.com/mailwatch/mailwatch/internal/data"
	"github.com/mailwatch/mailwatch/internal/service"
)

func main() {
	// .env is optional, real environment variables win either way
	_ = godotenv.Load()

	cfg := conf.LoadFromEnv()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	registry, err := conf.LoadSenderGroups(cfg.Digest.GroupsFile)
	if err != nil {
		log.Warn().Err(err).Msg("sender groups not loaded, every sender falls to the default group")
	} else {
		log.Info().Int("groups", registry.Size()).Msg("sender groups loaded")
	}

	repos, err := data.NewRepositories(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize repositories")
	}
	defer repos.Close()

	classifier := usecase.NewClassifier(repos.Scorer, cfg.Monitor.Labels, cfg.Scorer.Threshold, log.With().Str("component", "classifier").Logger())
	notifyUC := usecase.NewNotifyUsecase(registry, cfg.ToPolicyConfig(), log.With().Str("component", "notify").Logger())
	digestUC := usecase.NewDigestUsecase(repos.Stats, cfg.SummaryCutoff(), log.With().Str("component", "digest").Logger())

	monitor := service.NewMonitor(
		repos.Mailbox,
		repos.Notifier,
		classifier,
		notifyUC,
		digestUC,
		time.Duration(cfg.Monitor.CheckInterval)*time.Second,
		log.With().Str("component", "monitor").Logger(),
	)
	scheduler := service.NewScheduler(
		digestUC,
		repos.Notifier,
		repos.Mailbox,
		repos.Mailer,
		cfg.Digest.SummaryTime,
		cfg.Digest.CleanupDays,
		log.With().Str("component", "scheduler").Logger(),
	)

	ctx := context.Background()
	monitor.Start(ctx)
	scheduler.Start(ctx)

	log.Info().
		Str("mailbox", cfg.IMAP.User).
		Str("summary_time", cfg.Digest.SummaryTime).
		Msg("mailwatch running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	monitor.Stop()
	scheduler.Stop()
}
