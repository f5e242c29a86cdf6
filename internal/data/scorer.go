package data

import (
	"context"

	"github.com/mailwatch/mailwatch/internal/biz/repo"
	"github.com/mailwatch/mailwatch/internal/infra/zeroshot"
)

// scorerRepo adapts the zero-shot client to the scorer repository
type scorerRepo struct {
	client *zeroshot.Client
}

// NewScorerRepo creates a new scorer repository
func NewScorerRepo(client *zeroshot.Client) repo.ScorerRepo {
	return &scorerRepo{client: client}
}

// Score returns the candidate labels ranked by descending score
func (r *scorerRepo) Score(ctx context.Context, text string, labels []string) ([]repo.LabelScore, error) {
	scores, err := r.client.Score(ctx, text, labels)
	if err != nil {
		return nil, err
	}

	result := make([]repo.LabelScore, 0, len(scores))
	for _, s := range scores {
		result = append(result, repo.LabelScore{Label: s.Label, Score: s.Score})
	}
	return result, nil
}
