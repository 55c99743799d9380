package service

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/tableroll/internal/services/mcp/domain"
)

// registerDiceTools registers the dice tools on the MCP server.
func registerDiceTools(mcpServer *mcp.Server, dice domain.Dice) {
	mcp.AddTool(mcpServer, domain.RollCommandTool(), domain.RollCommandHandler(dice))
	mcp.AddTool(mcpServer, domain.ListSystemsTool(), domain.ListSystemsHandler(dice))
}
