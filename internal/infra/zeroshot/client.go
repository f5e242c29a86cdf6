package zeroshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a zero-shot text classifier. The user sends a message text and a list of candidate labels. Score how well each label fits the text.

Reply ONLY with a JSON array, one object per candidate label:
[{"label": "<label>", "score": <0.0-1.0>}, ...]

Every candidate label must appear exactly once. No explanations, no markdown fences.`

// Score is one candidate label with its score
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Client scores text against candidate labels through an
// OpenAI-compatible chat completion API
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new scoring client. baseURL may be empty to use
// the default API endpoint.
func NewClient(apiKey, baseURL, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Score returns the candidate labels ranked by descending score
func (c *Client) Score(ctx context.Context, text string, labels []string) ([]Score, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	userMsg := fmt.Sprintf("Candidate labels: %s\n\nText:\n%s", strings.Join(labels, ", "), text)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		Temperature: 0.1, // low temperature for deterministic scoring
		MaxTokens:   300,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}

	scores, err := parseScores(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, nil
}

// parseScores decodes the model reply, tolerating markdown fences
func parseScores(content string) ([]Score, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var scores []Score
	if err := json.Unmarshal([]byte(content), &scores); err != nil {
		return nil, fmt.Errorf("parse scores %q: %w", content, err)
	}
	return scores, nil
}
