// Package navigator drives an application under test toward a
// natural-language goal: observe the UI, ask the planning service for the
// next action, execute it, verify, repeat — under hard time, cost and
// action-count bounds.
package navigator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/ui-navigator/backend"
	"github.com/example/ui-navigator/guardrails"
	"github.com/example/ui-navigator/ledger"
	"github.com/example/ui-navigator/metrics"
	"github.com/example/ui-navigator/models"
	"github.com/example/ui-navigator/planner"
	"github.com/example/ui-navigator/retry"
)

// Default and escalation planning models. Escalation is monotonic within a
// run: once the controller switches, it never reverts.
const (
	DefaultModel    = "gpt-4o-mini"
	EscalationModel = "gpt-4o"
)

// settleDelay is how long the UI gets to react between executing an action
// and re-observing for verification. Implementation constant, not a
// guardrail.
const settleDelay = 400 * time.Millisecond

// Controller runs the observe-plan-act-verify loop. One instance may serve
// many sequential runs; concurrent runs need separate instances sharing at
// most the ledger.
type Controller struct {
	backend backend.Automation
	planner planner.Service
	ledger  *ledger.Ledger
	policy  guardrails.Policy
	invoker retry.Invoker
	log     *zap.Logger
	met     *metrics.Metrics
	hub     *Hub

	defaultModel    string
	escalationModel string
	settle          time.Duration
}

type Option func(*Controller)

func WithLogger(log *zap.Logger) Option { return func(c *Controller) { c.log = log } }

func WithInvoker(inv retry.Invoker) Option { return func(c *Controller) { c.invoker = inv } }

func WithMetrics(m *metrics.Metrics) Option { return func(c *Controller) { c.met = m } }

// WithModels overrides the default and escalation planning models.
func WithModels(def, escalation string) Option {
	return func(c *Controller) {
		c.defaultModel = def
		c.escalationModel = escalation
	}
}

// New validates the policy and wires a controller. The ledger may be shared
// with other controllers so cost accumulates across flow steps.
func New(b backend.Automation, p planner.Service, l *ledger.Ledger, policy guardrails.Policy, opts ...Option) (*Controller, error) {
	policy = policy.Normalized()
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if l == nil {
		l = ledger.New(nil)
	}
	c := &Controller{
		backend:         b,
		planner:         p,
		ledger:          l,
		policy:          policy,
		invoker:         retry.New(),
		log:             zap.NewNop(),
		hub:             NewHub(),
		defaultModel:    DefaultModel,
		escalationModel: EscalationModel,
		settle:          settleDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Subscribe streams progress events for a run ID. Pair with NavigateWithID:
// choose the ID, subscribe, then start the run.
func (c *Controller) Subscribe(runID string) (<-chan []byte, func()) {
	return c.hub.Subscribe(runID)
}

// Navigate drives the UI toward goal and always returns a well-formed
// result: success, budget exhaustion, policy violation, max actions, or a
// call failure after retries — never a panic or partial state.
//
// Deadline and cost checks are cooperative: they run once per iteration, so
// an in-flight call may overrun the deadline by at most its own duration.
// Callers needing a hard bound wrap Navigate in an external timeout.
func (c *Controller) Navigate(ctx context.Context, goal string) models.NavigationResult {
	return c.NavigateWithID(ctx, uuid.NewString(), goal)
}

// NavigateWithID is Navigate with a caller-chosen run ID, so the caller can
// Subscribe to the run's events before it starts. An empty ID gets a fresh
// UUID.
func (c *Controller) NavigateWithID(ctx context.Context, runID, goal string) (result models.NavigationResult) {
	if runID == "" {
		runID = uuid.NewString()
	}
	start := time.Now()
	log := c.log.With(zap.String("run_id", runID))

	var (
		history         []models.ActionRecord
		actionsExecuted int
		runTokens       int
		runCost         float64
	)

	finish := func(success bool, errMsg string) models.NavigationResult {
		res := models.NavigationResult{
			RunID:           runID,
			Success:         success,
			ActionsExecuted: actionsExecuted,
			TotalTokens:     runTokens,
			EstimatedCost:   runCost,
			ActionHistory:   history,
			Error:           errMsg,
		}
		outcome := "success"
		if !success {
			outcome = "failure"
			log.Warn("navigation failed", zap.String("reason", errMsg), zap.Int("actions", actionsExecuted))
		} else {
			log.Info("goal reached", zap.Int("actions", actionsExecuted), zap.Float64("cost_usd", runCost))
		}
		if c.met != nil {
			c.met.RunsTotal.WithLabelValues(outcome).Inc()
		}
		c.hub.Publish(runID, Event{Event: "run_finished", RunID: runID, Payload: res})
		return res
	}

	// A panic takes the same exit path as every other failure: metrics,
	// run_finished event, well-formed result.
	defer func() {
		if r := recover(); r != nil {
			log.Error("navigation panicked", zap.Any("panic", r))
			result = finish(false, fmt.Sprintf("internal error: %v", r))
		}
	}()

	record := func(model string, u models.TokenUsage) {
		if u.Total() == 0 {
			return
		}
		rec := c.ledger.Record(model, u.PromptTokens, u.CompletionTokens)
		runTokens += u.Total()
		runCost += rec.Cost
		if c.met != nil {
			c.met.TokensTotal.WithLabelValues(model).Add(float64(u.Total()))
			c.met.CostUSDTotal.WithLabelValues(model).Add(rec.Cost)
		}
	}

	model := c.defaultModel
	escalated := false

	log.Info("navigation started", zap.String("goal", goal))
	c.hub.Publish(runID, Event{Event: "run_started", RunID: runID, Payload: map[string]any{"goal": goal}})

	for {
		// Budget check, once per iteration. An in-flight call that crossed
		// the deadline was allowed to finish; it is caught here.
		if elapsed := time.Since(start); elapsed > c.policy.StepDeadline {
			return finish(false, fmt.Sprintf("step deadline exceeded after %s (limit %s)",
				elapsed.Round(time.Millisecond), c.policy.StepDeadline))
		}
		if c.ledger.IsOverBudget(c.policy.CostCapUSD) {
			return finish(false, fmt.Sprintf("cost budget exceeded: spent %.4f USD of %.4f cap",
				c.ledger.TotalCost(), c.policy.CostCapUSD))
		}

		// OBSERVE
		var snap *models.Snapshot
		err := c.invoker.Do(ctx, "observe", func(ctx context.Context) error {
			s, err := c.backend.Observe(ctx)
			if err != nil {
				return err
			}
			snap = s
			return nil
		})
		if err != nil {
			return finish(false, err.Error())
		}

		// PLAN. Usage is recorded per attempt, whether or not the response
		// decodes.
		var action models.Action
		err = c.invoker.Do(ctx, "plan", func(ctx context.Context) error {
			a, usage, err := c.planner.Plan(ctx, goal, snap, history, model)
			record(model, usage)
			if err != nil {
				return err
			}
			action = a
			return nil
		})
		if err != nil {
			return finish(false, err.Error())
		}
		c.hub.Publish(runID, Event{Event: "action_planned", RunID: runID, Payload: map[string]any{
			"kind": action.Kind(), "reasoning": action.Reason(),
		}})

		// FORBIDDEN_CHECK. Forbidden actions are refused before execution,
		// never attempted.
		serialized := strings.ToLower(models.EncodeAction(action))
		if keyword, hit := c.policy.MatchForbidden(serialized); hit {
			return finish(false, fmt.Sprintf("policy violation: proposed action matches forbidden keyword %q", keyword))
		}

		// ACT. A failed interaction is expected noise: recorded, never
		// fatal. Only verify failures or exhausted budgets end the run.
		executed := false
		execErr := c.invoker.Do(ctx, "execute", func(ctx context.Context) error {
			ok, err := c.backend.Execute(ctx, action)
			if err != nil {
				return err
			}
			executed = ok
			return nil
		})
		if execErr != nil {
			log.Warn("action execution failed", zap.String("kind", action.Kind()), zap.Error(execErr))
			executed = false
		}

		// RECORD
		history = append(history, models.ActionRecord{
			Timestamp: time.Now(),
			Kind:      action.Kind(),
			Params:    models.ActionParams(action),
			Reasoning: action.Reason(),
			Success:   executed,
		})
		actionsExecuted++
		if c.met != nil {
			c.met.ActionsTotal.Inc()
		}
		c.hub.Publish(runID, Event{Event: "action_executed", RunID: runID, Payload: history[len(history)-1]})

		// SETTLE: give the UI a moment to react before re-observing.
		if err := sleepCtx(ctx, c.settle); err != nil {
			return finish(false, err.Error())
		}

		// VERIFY: fresh snapshot, then ask the planning service for a
		// verdict.
		err = c.invoker.Do(ctx, "observe", func(ctx context.Context) error {
			s, err := c.backend.Observe(ctx)
			if err != nil {
				return err
			}
			snap = s
			return nil
		})
		if err != nil {
			return finish(false, err.Error())
		}

		var verdict models.Verdict
		err = c.invoker.Do(ctx, "verify", func(ctx context.Context) error {
			v, usage, err := c.planner.Verify(ctx, goal, snap, history, model)
			record(model, usage)
			if err != nil {
				return err
			}
			verdict = v
			return nil
		})
		if err != nil {
			return finish(false, err.Error())
		}
		c.hub.Publish(runID, Event{Event: "verdict", RunID: runID, Payload: verdict})

		if verdict.GoalReached {
			return finish(true, "")
		}

		// Escalate once the attempt threshold is crossed; never revert
		// within the run.
		if !escalated && actionsExecuted >= c.policy.EscalateAfterAttempts {
			escalated = true
			model = c.escalationModel
			log.Info("escalating planning model",
				zap.String("from", c.defaultModel),
				zap.String("to", c.escalationModel),
				zap.Int("actions_executed", actionsExecuted))
			c.hub.Publish(runID, Event{Event: "escalated", RunID: runID, Payload: map[string]any{"model": model}})
		}

		if actionsExecuted >= c.policy.MaxActionsPerStep {
			return finish(false, fmt.Sprintf("max actions reached (%d) without achieving goal", actionsExecuted))
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
