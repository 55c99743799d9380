package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/tableroll/internal/platform/timeouts"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

// callTimeout bounds one dice service call made by a tool.
const callTimeout = timeouts.GRPCRequest

// Dice is the dice service as seen by the tools: the in-process service or a
// gRPC client.
type Dice interface {
	Roll(ctx context.Context, req diceservice.Request) (diceservice.Outcome, error)
	ListSystems(ctx context.Context) ([]diceservice.SystemInfo, error)
}

// RollCommandInput represents the MCP tool input for one dice command.
type RollCommandInput struct {
	System  string `json:"system" jsonschema:"game system id, e.g. ColossalHunter or Kamigakari:Korean"`
	Command string `json:"command" jsonschema:"dice command text, e.g. 3CH+2>=10 or MT3"`
	Seed    *int64 `json:"seed,omitempty" jsonschema:"seed returned by an earlier roll to replay it"`
}

// AuditEntry is one random draw behind a result.
type AuditEntry struct {
	Source string `json:"source" jsonschema:"table id or dice expression"`
	Index  int    `json:"index" jsonschema:"rolled table index or dice total"`
	Dice   []int  `json:"dice,omitempty" jsonschema:"individual faces"`
	Kind   string `json:"kind" jsonschema:"table or dice"`
}

// RollCommandResult represents the MCP tool output for one dice command.
type RollCommandResult struct {
	System  string       `json:"system" jsonschema:"game system that evaluated the command"`
	Command string       `json:"command" jsonschema:"normalized command"`
	Handled bool         `json:"handled" jsonschema:"false when the command is not one of the system's commands"`
	Text    string       `json:"text" jsonschema:"formatted result line"`
	Outcome string       `json:"outcome" jsonschema:"none, fumble, critical, success or failure"`
	Seed    int64        `json:"seed" jsonschema:"seed that replays this roll"`
	Audit   []AuditEntry `json:"audit" jsonschema:"every draw in order"`
}

// ListSystemsInput represents the MCP tool input for listing systems.
type ListSystemsInput struct{}

// SystemSummary describes one game system.
type SystemSummary struct {
	ID     string   `json:"id" jsonschema:"game system id"`
	Name   string   `json:"name" jsonschema:"display name"`
	Locale string   `json:"locale" jsonschema:"result language"`
	Help   string   `json:"help" jsonschema:"command reference"`
	Tables []string `json:"tables" jsonschema:"table ids rolled by the system"`
}

// ListSystemsResult represents the MCP tool output for listing systems.
type ListSystemsResult struct {
	Systems []SystemSummary `json:"systems" jsonschema:"registered game systems"`
}

// RollCommandTool defines the MCP tool schema for dice commands.
func RollCommandTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_command",
		Description: "Evaluates a tabletop dice command for a game system",
	}
}

// ListSystemsTool defines the MCP tool schema for listing game systems.
func ListSystemsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_systems",
		Description: "Lists the game systems and their commands",
	}
}

// RollCommandHandler evaluates one dice command.
func RollCommandHandler(dice Dice) mcp.ToolHandlerFor[RollCommandInput, RollCommandResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollCommandInput) (*mcp.CallToolResult, RollCommandResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, RollCommandResult{}, fmt.Errorf("generate invocation id: %w", err)
		}

		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		callCtx, callMeta, err := NewCallContext(runCtx, invocationID)
		if err != nil {
			return nil, RollCommandResult{}, fmt.Errorf("create request metadata: %w", err)
		}

		outcome, err := dice.Roll(callCtx, diceservice.Request{
			System:  input.System,
			Command: input.Command,
			Seed:    input.Seed,
		})
		if err != nil {
			return nil, RollCommandResult{}, fmt.Errorf("roll command failed: %w", err)
		}

		audit := make([]AuditEntry, 0, len(outcome.Audit))
		for _, draw := range outcome.Audit {
			audit = append(audit, AuditEntry{
				Source: draw.Source,
				Index:  draw.Index,
				Dice:   draw.Dice,
				Kind:   string(draw.Kind),
			})
		}
		result := RollCommandResult{
			System:  outcome.System,
			Command: outcome.Command,
			Handled: outcome.Handled,
			Text:    outcome.Text,
			Outcome: outcome.Outcome.String(),
			Seed:    outcome.Seed,
			Audit:   audit,
		}
		return CallToolResultWithMetadata(callMeta), result, nil
	}
}

// ListSystemsHandler lists the registered game systems.
func ListSystemsHandler(dice Dice) mcp.ToolHandlerFor[ListSystemsInput, ListSystemsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListSystemsInput) (*mcp.CallToolResult, ListSystemsResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		callCtx, callMeta, err := NewCallContext(runCtx, "")
		if err != nil {
			return nil, ListSystemsResult{}, fmt.Errorf("create request metadata: %w", err)
		}

		list, err := dice.ListSystems(callCtx)
		if err != nil {
			return nil, ListSystemsResult{}, fmt.Errorf("list systems failed: %w", err)
		}
		systems := make([]SystemSummary, 0, len(list))
		for _, info := range list {
			tables := info.Tables
			if tables == nil {
				tables = []string{}
			}
			systems = append(systems, SystemSummary{
				ID:     info.ID,
				Name:   info.Name,
				Locale: info.Locale,
				Help:   info.Help,
				Tables: tables,
			})
		}
		return CallToolResultWithMetadata(callMeta), ListSystemsResult{Systems: systems}, nil
	}
}
