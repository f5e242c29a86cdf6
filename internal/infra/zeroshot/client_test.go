package zeroshot

import "testing"

func TestParseScores(t *testing.T) {
	scores, err := parseScores(`[{"label": "Urgente", "score": 0.9}, {"label": "Otros", "score": 0.1}]`)
	if err != nil {
		t.Fatalf("parseScores: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("scores = %d, want 2", len(scores))
	}
	if scores[0].Label != "Urgente" || scores[0].Score != 0.9 {
		t.Errorf("first score = %+v", scores[0])
	}
}

func TestParseScoresMarkdownFence(t *testing.T) {
	content := "```json\n[{\"label\": \"Importante\", \"score\": 0.7}]\n```"
	scores, err := parseScores(content)
	if err != nil {
		t.Fatalf("parseScores: %v", err)
	}
	if len(scores) != 1 || scores[0].Label != "Importante" {
		t.Errorf("scores = %+v", scores)
	}
}

func TestParseScoresGarbage(t *testing.T) {
	if _, err := parseScores("I think the email is urgent."); err == nil {
		t.Error("expected an error for a non-JSON reply")
	}
}
