package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
	"github.com/mailwatch/mailwatch/internal/biz/repo"
	"github.com/mailwatch/mailwatch/internal/biz/usecase"
)

// Monitor polls the mailbox and drives each unseen message through
// classification, the notification policy, and the digest recorder.
type Monitor struct {
	mailbox    repo.MailboxRepo
	notifier   repo.NotifierRepo
	classifier *usecase.Classifier
	notifyUC   *usecase.NotifyUsecase
	digestUC   *usecase.DigestUsecase

	interval time.Duration
	log      zerolog.Logger

	// message IDs whose alert already went out, so a retry caused by a
	// failed record does not resend the alert. Entries are dropped once
	// the message is marked seen.
	alerted map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor creates the mailbox monitor
func NewMonitor(
	mailbox repo.MailboxRepo,
	notifier repo.NotifierRepo,
	classifier *usecase.Classifier,
	notifyUC *usecase.NotifyUsecase,
	digestUC *usecase.DigestUsecase,
	interval time.Duration,
	log zerolog.Logger,
) *Monitor {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Monitor{
		mailbox:    mailbox,
		notifier:   notifier,
		classifier: classifier,
		notifyUC:   notifyUC,
		digestUC:   digestUC,
		interval:   interval,
		log:        log,
		alerted:    make(map[string]struct{}),
	}
}

// Start begins polling until Stop is called
func (m *Monitor) Start(ctx context.Context) {
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go m.loop()
	m.log.Info().Dur("interval", m.interval).Msg("monitor started")
}

// Stop halts polling and waits for the in-flight cycle
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.log.Info().Msg("monitor stopped")
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	m.Poll(m.ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.Poll(m.ctx)
		}
	}
}

// Poll runs one mailbox check cycle. A failure on one message never
// blocks the rest of the batch.
func (m *Monitor) Poll(ctx context.Context) {
	messages, err := m.mailbox.FetchUnseen(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("mailbox check failed")
		return
	}
	if len(messages) == 0 {
		return
	}

	m.log.Info().Int("count", len(messages)).Msg("unseen messages found")
	for _, msg := range messages {
		if ctx.Err() != nil {
			return
		}
		m.process(ctx, msg)
	}
}

// process handles one message. The message is only marked seen once it
// is recorded and, when an alert is due, the alert was delivered, so a
// failed step is retried on the next cycle.
func (m *Monitor) process(ctx context.Context, msg *domain.Message) {
	cls := m.classifier.Classify(ctx, msg.Subject, msg.Body)
	group, decision := m.notifyUC.Evaluate(msg, cls)

	alertOK := true
	if decision.Notify {
		if _, sent := m.alerted[msg.ID]; !sent {
			if err := m.notifier.SendAlert(ctx, msg, cls, group, decision.Reason()); err != nil {
				m.log.Warn().Err(err).Str("message_id", msg.ID).Msg("alert delivery failed")
				alertOK = false
			} else {
				m.alerted[msg.ID] = struct{}{}
			}
		}
	}

	recorded := m.digestUC.Record(ctx, msg, cls, group)

	if !recorded || !alertOK {
		return
	}
	if err := m.mailbox.MarkSeen(ctx, msg); err != nil {
		m.log.Warn().Err(err).Str("message_id", msg.ID).Msg("mark seen failed")
		return
	}
	delete(m.alerted, msg.ID)

	m.log.Debug().
		Str("message_id", msg.ID).
		Str("classification", cls.Label).
		Bool("notified", decision.Notify).
		Msg("message processed")
}
