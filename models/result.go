package models

import "time"

// TokenUsage is the token spend reported by one planning-service call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Total returns prompt plus completion tokens.
func (u TokenUsage) Total() int { return u.PromptTokens + u.CompletionTokens }

// Add accumulates another call's usage.
func (u *TokenUsage) Add(o TokenUsage) {
	u.PromptTokens += o.PromptTokens
	u.CompletionTokens += o.CompletionTokens
}

// ActionRecord is one entry of the append-only action log. One record is
// created per executed action and discarded with the run.
type ActionRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	Kind      string         `json:"kind"`
	Params    map[string]any `json:"params,omitempty"`
	Reasoning string         `json:"reasoning,omitempty"`
	Success   bool           `json:"success"`
}

// Verdict is the planning service's judgement of goal completion.
type Verdict struct {
	GoalReached bool   `json:"goal_reached"`
	Reasoning   string `json:"reasoning,omitempty"`
}

// NavigationResult is the terminal value of one navigate call. It is
// constructed exactly once, on every exit path, with the partial accounting
// intact.
type NavigationResult struct {
	RunID           string         `json:"run_id"`
	Success         bool           `json:"success"`
	ActionsExecuted int            `json:"actions_executed"`
	TotalTokens     int            `json:"total_tokens"`
	EstimatedCost   float64        `json:"estimated_cost"`
	ActionHistory   []ActionRecord `json:"action_history,omitempty"`
	Error           string         `json:"error,omitempty"`
}
