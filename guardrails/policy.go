// Package guardrails holds the immutable bounds a navigation run must not
// exceed: action count, wall-clock deadlines, cost cap and forbidden-action
// keywords.
package guardrails

import (
	"errors"
	"strings"
	"time"
)

// Policy describes the bounds enforced by the navigation controller. It is
// pure configuration and must not change for the lifetime of one run.
//
// RunDeadline is informational: the controller enforces StepDeadline per
// navigate call, while the caller wraps the whole flow run in RunDeadline.
type Policy struct {
	MaxActionsPerStep     int
	StepDeadline          time.Duration
	RunDeadline           time.Duration
	CostCapUSD            float64
	ForbiddenActions      []string
	EscalateAfterAttempts int
}

// Default returns the bounds used when the caller supplies none.
func Default() Policy {
	return Policy{
		MaxActionsPerStep:     15,
		StepDeadline:          3 * time.Minute,
		RunDeadline:           20 * time.Minute,
		CostCapUSD:            1.50,
		ForbiddenActions:      []string{"delete", "purchase", "sign out", "factory reset"},
		EscalateAfterAttempts: 5,
	}
}

// Validate checks all numeric bounds are positive.
func (p Policy) Validate() error {
	if p.MaxActionsPerStep <= 0 {
		return errors.New("guardrails: max actions per step must be positive")
	}
	if p.StepDeadline <= 0 {
		return errors.New("guardrails: step deadline must be positive")
	}
	if p.RunDeadline <= 0 {
		return errors.New("guardrails: run deadline must be positive")
	}
	if p.CostCapUSD < 0 {
		return errors.New("guardrails: cost cap must not be negative")
	}
	if p.EscalateAfterAttempts <= 0 {
		return errors.New("guardrails: escalate-after-attempts must be positive")
	}
	return nil
}

// Normalized returns a copy with forbidden keywords lower-cased, so matching
// in the loop is case-insensitive without per-iteration allocation.
func (p Policy) Normalized() Policy {
	out := p
	out.ForbiddenActions = make([]string, 0, len(p.ForbiddenActions))
	for _, kw := range p.ForbiddenActions {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out.ForbiddenActions = append(out.ForbiddenActions, kw)
		}
	}
	return out
}

// MatchForbidden reports the first forbidden keyword contained in the
// serialized action, which the caller must already have lower-cased.
func (p Policy) MatchForbidden(serialized string) (string, bool) {
	for _, kw := range p.ForbiddenActions {
		if strings.Contains(serialized, kw) {
			return kw, true
		}
	}
	return "", false
}
