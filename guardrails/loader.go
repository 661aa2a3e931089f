package guardrails

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// policyFile is the YAML shape written by the flow runner. Durations are
// strings in time.ParseDuration syntax ("90s", "3m").
type policyFile struct {
	MaxActionsPerStep     int      `yaml:"max_actions_per_step"`
	StepDeadline          string   `yaml:"step_deadline"`
	RunDeadline           string   `yaml:"run_deadline"`
	CostCapUSD            *float64 `yaml:"cost_cap_usd"`
	ForbiddenActions      []string `yaml:"forbidden_actions"`
	EscalateAfterAttempts int      `yaml:"escalate_after_attempts"`
}

// Load reads a policy from a YAML file, filling omitted fields from
// Default(). The returned policy is validated and normalized.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("guardrails: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML policy bytes. See Load.
func Parse(data []byte) (Policy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Policy{}, fmt.Errorf("guardrails: parse policy: %w", err)
	}

	p := Default()
	if f.MaxActionsPerStep != 0 {
		p.MaxActionsPerStep = f.MaxActionsPerStep
	}
	if f.StepDeadline != "" {
		d, err := time.ParseDuration(f.StepDeadline)
		if err != nil {
			return Policy{}, fmt.Errorf("guardrails: step_deadline: %w", err)
		}
		p.StepDeadline = d
	}
	if f.RunDeadline != "" {
		d, err := time.ParseDuration(f.RunDeadline)
		if err != nil {
			return Policy{}, fmt.Errorf("guardrails: run_deadline: %w", err)
		}
		p.RunDeadline = d
	}
	// Pointer so an explicit zero cap is distinguishable from an omitted one.
	if f.CostCapUSD != nil {
		p.CostCapUSD = *f.CostCapUSD
	}
	if f.ForbiddenActions != nil {
		p.ForbiddenActions = f.ForbiddenActions
	}
	if f.EscalateAfterAttempts != 0 {
		p.EscalateAfterAttempts = f.EscalateAfterAttempts
	}

	p = p.Normalized()
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}
