// Package web parses web command flags and starts the HTTP API.
package web

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/tableroll/internal/platform/cmd"
	"github.com/louisbranch/tableroll/internal/services/web"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr string `env:"TABLEROLL_WEB_HTTP_ADDR" envDefault:"localhost:8086"`
	// GRPCAddr is the game server address; empty evaluates in process.
	GRPCAddr       string   `env:"TABLEROLL_GAME_ADDR"`
	CatalogPath    string   `env:"TABLEROLL_CATALOG_PATH"`
	AllowedOrigins []string `env:"TABLEROLL_WEB_ALLOWED_ORIGINS" envSeparator:","`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "game-addr", cfg.GRPCAddr, "game server address (default: evaluate in process)")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "SQLite table catalog for in-process evaluation")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the HTTP API.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWeb, func(ctx context.Context) error {
		return web.Run(ctx, web.Config{
			HTTPAddr:       cfg.HTTPAddr,
			GRPCAddr:       cfg.GRPCAddr,
			CatalogPath:    cfg.CatalogPath,
			AllowedOrigins: cfg.AllowedOrigins,
		})
	})
}
