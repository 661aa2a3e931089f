package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ui-navigator/models"
	"github.com/example/ui-navigator/providers/llm"
)

// cannedClient returns queued responses in order, capturing prompts.
type cannedClient struct {
	responses []llm.Response
	errs      []error
	prompts   []string
	models    []string
}

func (c *cannedClient) Generate(ctx context.Context, model, prompt string) (llm.Response, error) {
	c.prompts = append(c.prompts, prompt)
	c.models = append(c.models, model)
	i := len(c.prompts) - 1
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	var resp llm.Response
	if i < len(c.responses) {
		resp = c.responses[i]
	}
	return resp, err
}

func someSnapshot() *models.Snapshot {
	return &models.Snapshot{Root: models.Node{
		Role:     "window",
		Children: []models.Node{{Role: "button", Label: "Settings", Identifier: "settings"}},
	}}
}

func TestPlanDecodesAction(t *testing.T) {
	client := &cannedClient{responses: []llm.Response{{
		Text:  `{"action":"tap_by_id","identifier":"settings","reasoning":"open it"}`,
		Usage: models.TokenUsage{PromptTokens: 120, CompletionTokens: 18},
	}}}
	p := NewLLM(client, nil)

	action, usage, err := p.Plan(context.Background(), "open settings", someSnapshot(), nil, "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, models.TapByID{Identifier: "settings", Reasoning: "open it"}, action)
	assert.Equal(t, 138, usage.Total())
	assert.Equal(t, []string{"gpt-4o-mini"}, client.models)

	// Goal and tree are both part of the prompt.
	assert.Contains(t, client.prompts[0], "open settings")
	assert.Contains(t, client.prompts[0], `"id":"settings"`)
}

func TestPlanStripsCodeFences(t *testing.T) {
	client := &cannedClient{responses: []llm.Response{{
		Text: "```json\n{\"action\":\"scroll\",\"direction\":\"down\",\"reasoning\":\"look lower\"}\n```",
	}}}
	p := NewLLM(client, nil)

	action, _, err := p.Plan(context.Background(), "g", someSnapshot(), nil, "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "scroll", action.Kind())
}

func TestPlanExtractsEmbeddedObject(t *testing.T) {
	client := &cannedClient{responses: []llm.Response{{
		Text: `Sure! Here is the next step: {"action":"wait","duration_ms":200,"reasoning":"loading"} Hope that helps.`,
	}}}
	p := NewLLM(client, nil)

	action, _, err := p.Plan(context.Background(), "g", someSnapshot(), nil, "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "wait", action.Kind())
}

func TestPlanMalformedKeepsUsage(t *testing.T) {
	client := &cannedClient{responses: []llm.Response{{
		Text:  `I would tap the settings button.`,
		Usage: models.TokenUsage{PromptTokens: 90, CompletionTokens: 9},
	}}}
	p := NewLLM(client, nil)

	_, usage, err := p.Plan(context.Background(), "g", someSnapshot(), nil, "gpt-4o-mini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
	assert.Equal(t, 99, usage.Total())
}

func TestPlanPropagatesClientError(t *testing.T) {
	client := &cannedClient{errs: []error{errors.New("status 500")}}
	p := NewLLM(client, nil)

	_, _, err := p.Plan(context.Background(), "g", someSnapshot(), nil, "gpt-4o-mini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestVerifyParsesVerdict(t *testing.T) {
	client := &cannedClient{responses: []llm.Response{{
		Text:  `{"goal_reached": true, "reasoning": "settings screen visible"}`,
		Usage: models.TokenUsage{PromptTokens: 80, CompletionTokens: 12},
	}}}
	p := NewLLM(client, nil)

	verdict, usage, err := p.Verify(context.Background(), "open settings", someSnapshot(), nil, "gpt-4o")
	require.NoError(t, err)
	assert.True(t, verdict.GoalReached)
	assert.Equal(t, "settings screen visible", verdict.Reasoning)
	assert.Equal(t, 92, usage.Total())
}

func TestVerifyMalformedIsError(t *testing.T) {
	client := &cannedClient{responses: []llm.Response{{Text: `probably done?`}}}
	p := NewLLM(client, nil)

	_, _, err := p.Verify(context.Background(), "g", someSnapshot(), nil, "gpt-4o")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestHistoryAppearsInPrompts(t *testing.T) {
	client := &cannedClient{responses: []llm.Response{{
		Text: `{"action":"wait","duration_ms":100}`,
	}}}
	p := NewLLM(client, nil)
	history := []models.ActionRecord{{Kind: "tap_by_id", Params: map[string]any{"identifier": "settings"}, Success: false}}

	_, _, err := p.Plan(context.Background(), "g", someSnapshot(), history, "gpt-4o-mini")
	require.NoError(t, err)
	assert.Contains(t, client.prompts[0], `"tap_by_id"`)
}
