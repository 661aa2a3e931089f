package llm

import (
	"context"
	"strings"

	"github.com/example/ui-navigator/models"
)

// MockClient is used when no real provider is configured. It answers
// verification prompts with a not-reached verdict and planning prompts with
// a short wait, which keeps dry runs moving without touching a real model.
type MockClient struct{}

func (m *MockClient) Generate(ctx context.Context, model, prompt string) (Response, error) {
	text := `{"action":"wait","duration_ms":100,"reasoning":"mock planner"}`
	if strings.Contains(prompt, "goal_reached") {
		text = `{"goal_reached": false, "reasoning": "mock verifier"}`
	}
	return Response{
		Text: text,
		Usage: models.TokenUsage{
			PromptTokens:     len(prompt) / 4,
			CompletionTokens: 16,
		},
	}, nil
}
