package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"prompt-clash/internal/game"
)

const assessSystemPrompt = "You score guesses against the original prompt of an AI-generated image. " +
	"Score 0-100 for semantic closeness, with a one-line reason. " +
	"Reply with a JSON array only: [{\"index\":0,\"score\":80,\"reason\":\"...\"}]."

type assessedGuess struct {
	Index  int    `json:"index"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Assess fills scores and reasons into a copy of the answers. Empty guesses
// are not sent to the model and keep a zero score. Zero answers is a no-op.
func (c *Client) Assess(ctx context.Context, originalPrompt string, answers []game.PlayerAnswer) ([]game.PlayerAnswer, error) {
	scored := make([]game.PlayerAnswer, len(answers))
	copy(scored, answers)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Original prompt: %s\nGuesses:\n", originalPrompt)
	asked := 0
	for i, answer := range scored {
		if strings.TrimSpace(answer.Guess) == "" {
			continue
		}
		fmt.Fprintf(&sb, "%d: %s\n", i, answer.Guess)
		asked++
	}
	if asked == 0 {
		return scored, nil
	}

	raw, err := c.chat(ctx, assessSystemPrompt, sb.String(), 0.2, 600)
	if err != nil {
		return nil, err
	}
	grades, err := parseAssessment(raw)
	if err != nil {
		return nil, err
	}
	for _, grade := range grades {
		if grade.Index < 0 || grade.Index >= len(scored) {
			continue
		}
		scored[grade.Index].Score = clampScore(grade.Score)
		scored[grade.Index].Reason = strings.TrimSpace(grade.Reason)
	}
	return scored, nil
}

func parseAssessment(raw string) ([]assessedGuess, error) {
	raw = stripCodeFence(raw)
	var grades []assessedGuess
	if err := json.Unmarshal([]byte(raw), &grades); err != nil {
		return nil, errors.New("assessment response is not valid JSON")
	}
	return grades, nil
}

func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
