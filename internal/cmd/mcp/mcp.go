// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/tableroll/internal/platform/cmd"
	mcpservice "github.com/louisbranch/tableroll/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	// Addr is the game server address; empty evaluates in process.
	Addr        string `env:"TABLEROLL_GAME_ADDR"`
	HTTPAddr    string `env:"TABLEROLL_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport   string `env:"TABLEROLL_MCP_TRANSPORT" envDefault:"stdio"`
	CatalogPath string `env:"TABLEROLL_CATALOG_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "game server address (default: evaluate in process)")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "SQLite table catalog for in-process evaluation")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			GRPCAddr:    cfg.Addr,
			HTTPAddr:    cfg.HTTPAddr,
			Transport:   mcpservice.TransportKind(cfg.Transport),
			CatalogPath: cfg.CatalogPath,
		})
	})
}
