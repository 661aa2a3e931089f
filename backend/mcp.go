package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/example/ui-navigator/models"
	"github.com/example/ui-navigator/retry"
)

// DriverNotReady is the failure signature an MCP automation server emits
// while its UI driver is still warming up. WaitReady keys its extended
// retry mode on it.
const DriverNotReady = "driver not ready"

// MCPBackend drives a desktop-automation MCP server over stdio. The server
// is expected to expose observe/click/type/scroll/swipe/press tools and to
// return the accessibility tree as JSON from observe.
type MCPBackend struct {
	mcp *client.Client
	log *zap.Logger
}

// NewMCPBackend launches the server command and completes the MCP
// initialize handshake.
func NewMCPBackend(ctx context.Context, command string, env []string, args []string, log *zap.Logger) (*MCPBackend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("mcp backend: start %s: %w", command, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "ui-navigator", Version: "0.1.0"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("mcp backend: initialize: %w", err)
	}
	log.Info("mcp backend connected", zap.String("command", command))
	return &MCPBackend{mcp: c, log: log}, nil
}

// WaitReady blocks until the server's UI driver answers an observe call.
// Cold-start latency is bounded and predictable, so this uses the invoker's
// extended mode and fails fast on anything that is not a warm-up symptom.
func (b *MCPBackend) WaitReady(ctx context.Context, inv retry.Invoker) error {
	return inv.DoExtended(ctx, "backend warm-up", DriverNotReady, func(ctx context.Context) error {
		_, err := b.Observe(ctx)
		return err
	})
}

func (b *MCPBackend) Observe(ctx context.Context) (*models.Snapshot, error) {
	text, err := b.callTool(ctx, "observe", map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	var root models.Node
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		return nil, fmt.Errorf("observe: decode tree: %w", err)
	}
	return &models.Snapshot{Root: root, CapturedAt: time.Now()}, nil
}

func (b *MCPBackend) Execute(ctx context.Context, action models.Action) (bool, error) {
	// Waits need no server round trip.
	if w, ok := action.(models.Wait); ok {
		t := time.NewTimer(w.Duration)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-t.C:
			return true, nil
		}
	}

	name, args, err := toolCallFor(action)
	if err != nil {
		return false, err
	}
	text, err := b.callTool(ctx, name, args)
	if err != nil {
		return false, fmt.Errorf("execute %s: %w", action.Kind(), err)
	}
	// Servers report interaction outcome as {"ok": bool, ...}; an empty or
	// unparseable body counts as accepted.
	var out struct {
		OK      *bool  `json:"ok"`
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(text), &out) == nil && out.OK != nil && !*out.OK {
		b.log.Debug("action rejected by backend",
			zap.String("kind", action.Kind()),
			zap.String("message", out.Message))
		return false, nil
	}
	return true, nil
}

// Close terminates the server process.
func (b *MCPBackend) Close() error { return b.mcp.Close() }

// toolCallFor maps an action variant onto the server's tool vocabulary.
func toolCallFor(action models.Action) (string, map[string]any, error) {
	switch a := action.(type) {
	case models.TapByID:
		return "click", map[string]any{"id": a.Identifier}, nil
	case models.TapAt:
		return "click", map[string]any{"x": a.X, "y": a.Y}, nil
	case models.TypeText:
		return "type", map[string]any{"text": a.Text}, nil
	case models.Scroll:
		args := map[string]any{"direction": a.Direction}
		if a.Amount > 0 {
			args["amount"] = a.Amount
		}
		return "scroll", args, nil
	case models.Swipe:
		return "swipe", map[string]any{"x1": a.X1, "y1": a.Y1, "x2": a.X2, "y2": a.Y2}, nil
	case models.PressButton:
		return "press", map[string]any{"button": a.Button}, nil
	default:
		return "", nil, fmt.Errorf("no tool mapping for action kind %q", action.Kind())
	}
}

func (b *MCPBackend) callTool(ctx context.Context, name string, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := b.mcp.CallTool(ctx, req)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	if res.IsError {
		msg := sb.String()
		if msg == "" {
			msg = "tool error"
		}
		return "", errors.New(msg)
	}
	return sb.String(), nil
}
