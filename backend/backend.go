// Package backend defines the automation capability the controller drives,
// plus an adapter for MCP desktop-automation servers.
package backend

import (
	"context"

	"github.com/example/ui-navigator/models"
)

// Automation can inspect and manipulate the UI under test. Both calls are
// potentially slow and flaky; the controller wraps them in its invoker.
type Automation interface {
	// Observe captures a fresh accessibility snapshot.
	Observe(ctx context.Context) (*models.Snapshot, error)
	// Execute performs one action. The bool reports whether the backend
	// accepted and completed the interaction; a false return is expected
	// noise, not an error.
	Execute(ctx context.Context, action models.Action) (bool, error)
}
