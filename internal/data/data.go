package data

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/repo"
	"github.com/mailwatch/mailwatch/internal/conf"
	"github.com/mailwatch/mailwatch/internal/infra/imapmail"
	"github.com/mailwatch/mailwatch/internal/infra/lark"
	"github.com/mailwatch/mailwatch/internal/infra/zeroshot"
	"github.com/mailwatch/mailwatch/internal/rate"
)

// Repositories contains all repositories
type Repositories struct {
	Mailbox  repo.MailboxRepo
	Notifier repo.NotifierRepo
	Scorer   repo.ScorerRepo // nil when no scorer is configured
	Stats    repo.StatsRepo
	Mailer   repo.MailerRepo // nil when no email recipient is configured

	limiter *rate.TokenBucket
}

// NewRepositories creates all repositories from configuration
func NewRepositories(cfg *conf.Config, log zerolog.Logger) (*Repositories, error) {
	statsRepo, err := NewStatsRepo(cfg.Digest.DBPath)
	if err != nil {
		return nil, err
	}

	imapClient := imapmail.NewClient(cfg.IMAP.Host, cfg.IMAP.Port, cfg.IMAP.User, cfg.IMAP.Password)
	larkClient := lark.NewClient(cfg.Lark.AppID, cfg.Lark.AppSecret)

	// outbound chat sends are spaced by roughly one second
	limiter := rate.NewTokenBucket(time.Second)

	repos := &Repositories{
		Mailbox:  NewMailboxRepo(imapClient, cfg.IMAP.User, log),
		Notifier: NewLarkNotifier(larkClient, cfg.Lark.ChatID, limiter, log),
		Stats:    statsRepo,
		limiter:  limiter,
	}

	if cfg.Scorer.APIKey != "" {
		scorerClient := zeroshot.NewClient(cfg.Scorer.APIKey, cfg.Scorer.BaseURL, cfg.Scorer.Model)
		repos.Scorer = NewScorerRepo(scorerClient)
	}

	if cfg.Digest.EmailRecipient != "" {
		repos.Mailer = NewSMTPMailer(cfg.SMTP, cfg.Digest.EmailRecipient, log)
	}

	return repos, nil
}

// Close releases all repository resources
func (r *Repositories) Close() error {
	if r.limiter != nil {
		r.limiter.Stop()
	}
	return r.Stats.Close()
}
