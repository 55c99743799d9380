package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"google.golang.org/grpc"

	dicegrpc "github.com/louisbranch/tableroll/internal/api/grpc/dice"
	platformgrpc "github.com/louisbranch/tableroll/internal/platform/grpc"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

// Config controls scenario execution.
type Config struct {
	// GRPCAddr is the game server address. Empty runs against an in-process
	// dice service built from CatalogPath.
	GRPCAddr    string
	CatalogPath string
	Timeout     time.Duration
	Assertions  AssertionMode
	Verbose     bool
	Logger      *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		Assertions: AssertionStrict,
		Verbose:    false,
	}
}

// Dice is the dice service exercised by scenarios.
type Dice interface {
	Roll(ctx context.Context, req diceservice.Request) (diceservice.Outcome, error)
	ListSystems(ctx context.Context) ([]diceservice.SystemInfo, error)
}

// Runner executes Lua scenarios against the dice service.
type Runner struct {
	conn       *grpc.ClientConn
	dice       Dice
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
}

// NewRunner connects to the game server, or opens the dice service in
// process, and prepares a scenario runner.
func NewRunner(ctx context.Context, cfg Config) (*Runner, error) {
	addr := strings.TrimSpace(cfg.GRPCAddr)
	if addr == "" {
		svc, err := diceservice.Open(ctx, cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		return newRunnerWithDice(cfg, svc)
	}

	conn, err := platformgrpc.Dial(ctx, addr, platformgrpc.DialOptions{
		Service: dicegrpc.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("dial gRPC: %w", err)
	}

	r, err := newRunnerWithDice(cfg, dicegrpc.NewClient(conn, ""))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	r.conn = conn
	return r, nil
}

// newRunnerWithDice builds a Runner around dice.
// Config defaults (logger, timeout) are applied here so they are testable.
func newRunnerWithDice(cfg Config, dice Dice) (*Runner, error) {
	if dice == nil {
		return nil, errors.New("dice service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Runner{
		dice:       dice,
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
	}, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}

	runner, err := NewRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	return runner.RunScenario(ctx, scenario)
}

// RunScenario executes the scenario steps in order.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &scenarioState{rolls: map[string]diceservice.Outcome{}}

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
