package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
	"github.com/mailwatch/mailwatch/internal/biz/usecase"
	"github.com/mailwatch/mailwatch/internal/conf"
	"github.com/mailwatch/mailwatch/internal/data"
	"github.com/mailwatch/mailwatch/internal/service"
)

const usage = `Usage: mailwatchctl <command> [args]

Commands:
  test-notify              send a test message to the chat
  classify <subject> <body> classify a message and print the result
  send-daily [date]        generate and deliver the daily digest (default today)
  send-weekly              generate and deliver this week's digest
  send-monthly [yyyy mm]   generate and deliver a monthly digest (default last month)
  cleanup                  delete records past the retention window
  health                   probe the mailbox, stats store and chat service
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	// .env is optional, real environment variables win either way
	_ = godotenv.Load()

	cfg := conf.LoadFromEnv()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	registry, err := conf.LoadSenderGroups(cfg.Digest.GroupsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: sender groups not loaded: %v\n", err)
	}

	repos, err := data.NewRepositories(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer repos.Close()

	classifier := usecase.NewClassifier(repos.Scorer, cfg.Monitor.Labels, cfg.Scorer.Threshold, log)
	notifyUC := usecase.NewNotifyUsecase(registry, cfg.ToPolicyConfig(), log)
	digestUC := usecase.NewDigestUsecase(repos.Stats, cfg.SummaryCutoff(), log)
	scheduler := service.NewScheduler(digestUC, repos.Notifier, repos.Mailbox, repos.Mailer,
		cfg.Digest.SummaryTime, cfg.Digest.CleanupDays, log)

	ctx := context.Background()

	switch os.Args[1] {
	case "test-notify":
		if err := repos.Notifier.SendDailyDigest(ctx, "📧 mailwatch: mensaje de prueba"); err != nil {
			fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("test message sent")

	case "classify":
		if len(os.Args) < 4 {
			fmt.Println("Usage: mailwatchctl classify <subject> <body>")
			os.Exit(1)
		}
		subject, body := os.Args[2], os.Args[3]
		cls := classifier.Classify(ctx, subject, body)
		fmt.Printf("label: %s\nconfidence: %.2f\npriority: %s\n", cls.Label, cls.Confidence, cls.Priority())

		group, decision := notifyUC.Evaluate(&domain.Message{Subject: subject, Body: body}, cls)
		fmt.Printf("group: %s\nnotify: %v\n", group, decision.Notify)
		if reason := decision.Reason(); reason != "" {
			fmt.Printf("reason: %s\n", reason)
		}

	case "send-daily":
		date := ""
		if len(os.Args) > 2 {
			date = os.Args[2]
		}
		scheduler.RunDaily(ctx, date)
		fmt.Println("daily digest done")

	case "send-weekly":
		scheduler.RunWeekly(ctx, time.Now())
		fmt.Println("weekly digest done")

	case "send-monthly":
		prev := time.Now().AddDate(0, 0, -time.Now().Day())
		year, month := prev.Year(), int(prev.Month())
		if len(os.Args) > 3 {
			if y, err := strconv.Atoi(os.Args[2]); err == nil {
				year = y
			}
			if m, err := strconv.Atoi(os.Args[3]); err == nil {
				month = m
			}
		}
		scheduler.RunMonthly(ctx, year, month)
		fmt.Println("monthly digest done")

	case "cleanup":
		records, stats := digestUC.Cleanup(ctx, cfg.Digest.CleanupDays)
		fmt.Printf("deleted %d records and %d day rows\n", records, stats)

	case "health":
		ok := true
		for name, ping := range map[string]func(context.Context) error{
			"mailbox": repos.Mailbox.Ping,
			"stats":   repos.Stats.Ping,
			"chat":    repos.Notifier.Ping,
		} {
			if err := ping(ctx); err != nil {
				fmt.Printf("%s: FAIL (%v)\n", name, err)
				ok = false
			} else {
				fmt.Printf("%s: ok\n", name)
			}
		}
		if !ok {
			os.Exit(1)
		}

	default:
		fmt.Print(usage)
		os.Exit(1)
	}
}
