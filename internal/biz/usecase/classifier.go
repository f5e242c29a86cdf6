package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
	"github.com/mailwatch/mailwatch/internal/biz/repo"
)

// Keyword sets for the deterministic fallback
var (
	urgentKeywords    = []string{"urgente", "emergency", "critical", "critico", "inmediato", "importante"}
	importantKeywords = []string{"factura", "invoice", "payment", "pago", "vencimiento", "deadline"}
)

type scorerState int

const (
	scorerUntried scorerState = iota
	scorerReady
	scorerUnavailable
)

// Classifier assigns one label out of the candidate set to a message.
// The scoring capability is probed lazily on first use; once it is
// marked unavailable every later call goes straight to the keyword
// fallback without re-probing.
type Classifier struct {
	scorer    repo.ScorerRepo
	labels    []string
	threshold float64
	log       zerolog.Logger

	mu    sync.Mutex
	state scorerState
}

// NewClassifier creates a classifier. scorer may be nil, in which case
// only the keyword fallback is used.
func NewClassifier(scorer repo.ScorerRepo, labels []string, threshold float64, log zerolog.Logger) *Classifier {
	state := scorerUntried
	if scorer == nil {
		state = scorerUnavailable
	}
	if len(labels) == 0 {
		labels = []string{domain.LabelUrgent, domain.LabelImportant, domain.LabelOther}
	}
	if threshold <= 0 {
		threshold = 0.5
	}
	return &Classifier{
		scorer:    scorer,
		labels:    labels,
		threshold: threshold,
		log:       log,
		state:     state,
	}
}

// Classify never fails: scorer errors and low-confidence results
// degrade to the keyword fallback or the default label.
func (c *Classifier) Classify(ctx context.Context, subject, body string) domain.Classification {
	if !c.scorerUsable() {
		return c.fallback(subject, body)
	}

	text := subject + " " + body
	scores, err := c.scorer.Score(ctx, text, c.labels)
	if err != nil {
		c.scorerFailed(err)
		return c.fallback(subject, body)
	}
	if len(scores) == 0 {
		c.log.Warn().Msg("scorer returned no labels, using fallback")
		return c.fallback(subject, body)
	}
	c.scorerSucceeded()

	top := scores[0]
	if top.Score < c.threshold {
		c.log.Debug().Str("label", top.Label).Float64("score", top.Score).
			Msg("top score below threshold")
		return domain.Classification{Label: domain.LabelOther, Confidence: top.Score}
	}
	return domain.Classification{Label: top.Label, Confidence: top.Score}
}

func (c *Classifier) scorerUsable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != scorerUnavailable
}

// scorerFailed marks the scorer unavailable when it never worked.
// Failures after a successful call are treated as transient.
func (c *Classifier) scorerFailed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == scorerUntried {
		c.state = scorerUnavailable
		c.log.Warn().Err(err).Msg("scorer unavailable, keyword fallback from now on")
		return
	}
	c.log.Warn().Err(err).Msg("scorer call failed, using fallback for this message")
}

func (c *Classifier) scorerSucceeded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == scorerUntried {
		c.state = scorerReady
		c.log.Info().Msg("scorer ready")
	}
}

// fallback applies the deterministic keyword rules
func (c *Classifier) fallback(subject, body string) domain.Classification {
	text := strings.ToLower(subject + " " + body)
	for _, kw := range urgentKeywords {
		if strings.Contains(text, kw) {
			return domain.Classification{Label: domain.LabelUrgent}
		}
	}
	for _, kw := range importantKeywords {
		if strings.Contains(text, kw) {
			return domain.Classification{Label: domain.LabelImportant}
		}
	}
	return domain.Classification{Label: domain.LabelOther}
}
