// Package game parses game command flags and starts the dice gRPC server.
package game

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/tableroll/internal/platform/cmd"
	server "github.com/louisbranch/tableroll/internal/services/game/app"
)

// Config holds game command configuration.
type Config struct {
	Port        int    `env:"TABLEROLL_GAME_PORT" envDefault:"8082"`
	Addr        string `env:"TABLEROLL_GAME_ADDR"`
	CatalogPath string `env:"TABLEROLL_CATALOG_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The game server listen address (overrides -port)")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "SQLite table catalog (default: embedded tables)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the game server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			Addr:        cfg.Addr,
			Port:        cfg.Port,
			CatalogPath: cfg.CatalogPath,
		})
	})
}
