package repo

import "context"

// LabelScore is one candidate label with its score
type LabelScore struct {
	Label string
	Score float64
}

// ScorerRepo is the pluggable zero-shot scoring capability.
// Implementations return candidate labels ranked by descending score.
type ScorerRepo interface {
	Score(ctx context.Context, text string, labels []string) ([]LabelScore, error)
}
