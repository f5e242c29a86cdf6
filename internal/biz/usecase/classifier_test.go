package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
	"github.com/mailwatch/mailwatch/internal/biz/repo"
)

type mockScorer struct {
	scores []repo.LabelScore
	err    error
	calls  int
}

func (m *mockScorer) Score(ctx context.Context, text string, labels []string) ([]repo.LabelScore, error) {
	m.calls++
	return m.scores, m.err
}

func TestClassifyFallbackUrgentKeyword(t *testing.T) {
	c := NewClassifier(nil, nil, 0.5, zerolog.Nop())

	cls := c.Classify(context.Background(), "Aviso URGENTE", "revisa esto")
	if cls.Label != domain.LabelUrgent {
		t.Errorf("Label = %q, want %s", cls.Label, domain.LabelUrgent)
	}
	if cls.Confidence != 0 {
		t.Errorf("fallback Confidence = %v, want 0", cls.Confidence)
	}
}

func TestClassifyFallbackImportantKeyword(t *testing.T) {
	c := NewClassifier(nil, nil, 0.5, zerolog.Nop())

	cls := c.Classify(context.Background(), "Su factura", "adjunta")
	if cls.Label != domain.LabelImportant {
		t.Errorf("Label = %q, want %s", cls.Label, domain.LabelImportant)
	}
}

func TestClassifyFallbackDefault(t *testing.T) {
	c := NewClassifier(nil, nil, 0.5, zerolog.Nop())

	cls := c.Classify(context.Background(), "hola", "que tal")
	if cls.Label != domain.LabelOther {
		t.Errorf("Label = %q, want %s", cls.Label, domain.LabelOther)
	}
}

func TestClassifyScorerAboveThreshold(t *testing.T) {
	scorer := &mockScorer{scores: []repo.LabelScore{
		{Label: domain.LabelUrgent, Score: 0.9},
		{Label: domain.LabelOther, Score: 0.1},
	}}
	c := NewClassifier(scorer, nil, 0.5, zerolog.Nop())

	cls := c.Classify(context.Background(), "asunto", "cuerpo")
	if cls.Label != domain.LabelUrgent {
		t.Errorf("Label = %q, want %s", cls.Label, domain.LabelUrgent)
	}
	if cls.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", cls.Confidence)
	}
}

func TestClassifyScorerBelowThreshold(t *testing.T) {
	scorer := &mockScorer{scores: []repo.LabelScore{
		{Label: domain.LabelUrgent, Score: 0.3},
	}}
	c := NewClassifier(scorer, nil, 0.5, zerolog.Nop())

	cls := c.Classify(context.Background(), "asunto", "cuerpo")
	if cls.Label != domain.LabelOther {
		t.Errorf("Label = %q, want %s", cls.Label, domain.LabelOther)
	}
}

func TestClassifyScorerCustomLabelKeptVerbatim(t *testing.T) {
	scorer := &mockScorer{scores: []repo.LabelScore{
		{Label: "Facturas", Score: 0.8},
	}}
	c := NewClassifier(scorer, []string{"Facturas", "Spam"}, 0.5, zerolog.Nop())

	cls := c.Classify(context.Background(), "asunto", "cuerpo")
	if cls.Label != "Facturas" {
		t.Errorf("Label = %q, want Facturas", cls.Label)
	}
}

func TestClassifyScorerFailureNeverReprobes(t *testing.T) {
	scorer := &mockScorer{err: errors.New("api down")}
	c := NewClassifier(scorer, nil, 0.5, zerolog.Nop())

	cls := c.Classify(context.Background(), "nada", "especial")
	if cls.Label != domain.LabelOther {
		t.Errorf("Label = %q, want fallback", cls.Label)
	}
	if scorer.calls != 1 {
		t.Fatalf("calls = %d, want 1", scorer.calls)
	}

	c.Classify(context.Background(), "otro", "mensaje")
	if scorer.calls != 1 {
		t.Errorf("calls after second classify = %d, want 1 (no re-probe)", scorer.calls)
	}
}

func TestClassifyScorerTransientFailureAfterSuccess(t *testing.T) {
	scorer := &mockScorer{scores: []repo.LabelScore{{Label: domain.LabelUrgent, Score: 0.9}}}
	c := NewClassifier(scorer, nil, 0.5, zerolog.Nop())

	c.Classify(context.Background(), "a", "b")

	scorer.err = errors.New("timeout")
	cls := c.Classify(context.Background(), "urgente", "fallo")
	if cls.Label != domain.LabelUrgent {
		t.Errorf("Label = %q, want fallback urgent", cls.Label)
	}

	// the scorer stays usable after a transient failure
	scorer.err = nil
	c.Classify(context.Background(), "c", "d")
	if scorer.calls != 3 {
		t.Errorf("calls = %d, want 3", scorer.calls)
	}
}

func TestClassifyScorerEmptyResultUsesFallback(t *testing.T) {
	scorer := &mockScorer{}
	c := NewClassifier(scorer, nil, 0.5, zerolog.Nop())

	cls := c.Classify(context.Background(), "pago pendiente", "")
	if cls.Label != domain.LabelImportant {
		t.Errorf("Label = %q, want %s", cls.Label, domain.LabelImportant)
	}
}
