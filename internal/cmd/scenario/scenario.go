// Package scenario parses scenario command flags and runs Lua scenarios.
package scenario

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"time"

	entrypoint "github.com/louisbranch/tableroll/internal/platform/cmd"
	"github.com/louisbranch/tableroll/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	// GRPCAddr is the game server address; empty evaluates in process.
	GRPCAddr    string        `env:"TABLEROLL_GAME_ADDR"`
	CatalogPath string        `env:"TABLEROLL_CATALOG_PATH"`
	Scenario    string        `env:"TABLEROLL_SCENARIO_FILE"`
	Assertions  bool          `env:"TABLEROLL_SCENARIO_ASSERT"  envDefault:"true"`
	Verbose     bool          `env:"TABLEROLL_SCENARIO_VERBOSE"`
	Timeout     time.Duration `env:"TABLEROLL_SCENARIO_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "game server address (default: evaluate in process)")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "SQLite table catalog for in-process evaluation")
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config, errOut io.Writer) error {
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScenario, func(ctx context.Context) error {
		return scenario.RunFile(ctx, scenario.Config{
			GRPCAddr:    cfg.GRPCAddr,
			CatalogPath: cfg.CatalogPath,
			Timeout:     cfg.Timeout,
			Assertions:  mode,
			Verbose:     cfg.Verbose,
			Logger:      log.New(errOut, "", 0),
		}, cfg.Scenario)
	})
}
