package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/ui-navigator/models"
	"github.com/example/ui-navigator/providers/llm"
)

// LLM is the model-backed Service. A malformed response is returned as an
// error with the usage intact; the controller's invoker retries it the same
// way as a transport failure.
type LLM struct {
	client llm.Client
	log    *zap.Logger
}

// NewLLM wraps a provider client. A nil logger is replaced with a no-op.
func NewLLM(client llm.Client, log *zap.Logger) *LLM {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLM{client: client, log: log}
}

// NewFromEnv builds a Service on whichever provider the environment
// configures, falling back to the deterministic mock.
func NewFromEnv(log *zap.Logger) *LLM {
	return NewLLM(llm.NewFromEnv(), log)
}

func (p *LLM) Plan(ctx context.Context, goal string, snap *models.Snapshot, history []models.ActionRecord, model string) (models.Action, models.TokenUsage, error) {
	resp, err := p.client.Generate(ctx, model, buildPlanPrompt(goal, snap, history))
	if err != nil {
		return nil, resp.Usage, fmt.Errorf("plan: %w", err)
	}
	text := normalizeJSONText(resp.Text)
	action, err := models.DecodeAction([]byte(text))
	if err != nil {
		p.log.Warn("planner response malformed", zap.String("model", model), zap.Error(err))
		return nil, resp.Usage, fmt.Errorf("plan: malformed response: %w", err)
	}
	return action, resp.Usage, nil
}

func (p *LLM) Verify(ctx context.Context, goal string, snap *models.Snapshot, history []models.ActionRecord, model string) (models.Verdict, models.TokenUsage, error) {
	resp, err := p.client.Generate(ctx, model, buildVerifyPrompt(goal, snap, history))
	if err != nil {
		return models.Verdict{}, resp.Usage, fmt.Errorf("verify: %w", err)
	}
	text := normalizeJSONText(resp.Text)
	var v struct {
		GoalReached *bool  `json:"goal_reached"`
		Reasoning   string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(text), &v); err != nil || v.GoalReached == nil {
		p.log.Warn("verifier response malformed", zap.String("model", model))
		return models.Verdict{}, resp.Usage, fmt.Errorf("verify: malformed response: %.120q", resp.Text)
	}
	return models.Verdict{GoalReached: *v.GoalReached, Reasoning: v.Reasoning}, resp.Usage, nil
}

func buildPlanPrompt(goal string, snap *models.Snapshot, history []models.ActionRecord) string {
	return fmt.Sprintf(`You are a UI navigation agent driving an application toward a goal.
Output ONLY a JSON object for the single next action, no prose, no code fences.

Actions (you MUST stick to these shapes):
- {"action":"tap_by_id","identifier":"...","reasoning":"..."}
- {"action":"tap_at","x":N,"y":N,"reasoning":"..."}
- {"action":"type_text","text":"...","reasoning":"..."}
- {"action":"scroll","direction":"up"|"down"|"left"|"right","amount":N,"reasoning":"..."}
- {"action":"swipe","x1":N,"y1":N,"x2":N,"y2":N,"reasoning":"..."}
- {"action":"press_button","button":"...","reasoning":"..."}
- {"action":"wait","duration_ms":N,"reasoning":"..."}

Rules:
- Prefer tap_by_id when the target element has an identifier; tap_at only as a last resort.
- Do not repeat an action that already failed with the same parameters.
- The accessibility tree uses keys r=role, t=title, v=value, id=identifier, b=[x,y,w,h], c=children.

Goal: %s
Accessibility tree: %s
Actions so far: %s`, goal, snap.Compact(), historyJSON(history))
}

func buildVerifyPrompt(goal string, snap *models.Snapshot, history []models.ActionRecord) string {
	return fmt.Sprintf(`You are a strict verifier judging whether a UI goal has been reached.
Respond with JSON only: {"goal_reached": true|false, "reasoning": "..."}.
The accessibility tree uses keys r=role, t=title, v=value, id=identifier, b=[x,y,w,h], c=children.

Goal: %s
Current accessibility tree: %s
Actions taken: %s`, goal, snap.Compact(), historyJSON(history))
}

func historyJSON(history []models.ActionRecord) string {
	if len(history) == 0 {
		return "[]"
	}
	b, err := json.Marshal(history)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// normalizeJSONText strips code fences and, if the text does not start with
// an object, extracts the first top-level JSON object.
func normalizeJSONText(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```")
		if idx := strings.IndexByte(t, '\n'); idx != -1 {
			t = t[idx+1:]
		}
		if j := strings.LastIndex(t, "```"); j != -1 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}
	if !strings.HasPrefix(t, "{") {
		if obj := extractJSONObject(t); obj != "" {
			return obj
		}
	}
	return t
}

// extractJSONObject is a crude extractor for the first top-level JSON object
// in a string.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
