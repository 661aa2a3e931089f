// Package llm holds the provider clients behind the planning service.
package llm

import (
	"context"

	"github.com/example/ui-navigator/models"
)

// Response is one completion plus the provider-reported token usage.
type Response struct {
	Text  string
	Usage models.TokenUsage
}

// Client is the minimal surface the planning service needs. The model is
// chosen per call because the controller escalates models mid-run. Clients
// perform a single attempt; retry policy lives with the caller.
type Client interface {
	Generate(ctx context.Context, model, prompt string) (Response, error)
}
