// Package planner asks a language model for the next UI action and for
// goal-completion verdicts.
package planner

import (
	"context"

	"github.com/example/ui-navigator/models"
)

// Service proposes the next action toward a goal and judges whether the
// goal has been reached. Both calls report token usage even when the
// response cannot be decoded, so the caller can account for spend on every
// attempt.
type Service interface {
	Plan(ctx context.Context, goal string, snap *models.Snapshot, history []models.ActionRecord, model string) (models.Action, models.TokenUsage, error)
	Verify(ctx context.Context, goal string, snap *models.Snapshot, history []models.ActionRecord, model string) (models.Verdict, models.TokenUsage, error)
}
