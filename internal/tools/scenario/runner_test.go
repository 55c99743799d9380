package scenario

import (
	"bytes"
	"context"
	"log"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"

	dicegrpc "github.com/louisbranch/tableroll/internal/api/grpc/dice"
	"github.com/louisbranch/tableroll/internal/core/check"
	"github.com/louisbranch/tableroll/internal/core/table"
	apperrors "github.com/louisbranch/tableroll/internal/platform/errors"
	platformgrpc "github.com/louisbranch/tableroll/internal/platform/grpc"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

// fakeDice returns a fixed outcome for every handled command and records requests.
type fakeDice struct {
	outcome  diceservice.Outcome
	err      error
	requests []diceservice.Request
	systems  []diceservice.SystemInfo
}

func (f *fakeDice) Roll(_ context.Context, req diceservice.Request) (diceservice.Outcome, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return diceservice.Outcome{}, f.err
	}
	out := f.outcome
	out.System = req.System
	out.Command = req.Command
	if req.Seed != nil {
		out.Seed = *req.Seed
	}
	return out, nil
}

func (f *fakeDice) ListSystems(context.Context) ([]diceservice.SystemInfo, error) {
	return f.systems, f.err
}

func newTestRunner(t *testing.T, dice Dice, mode AssertionMode) (*Runner, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	runner, err := newRunnerWithDice(Config{Assertions: mode, Logger: log.New(&logs, "", 0), Verbose: true}, dice)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return runner, &logs
}

func gorillaOutcome() diceservice.Outcome {
	return diceservice.Outcome{
		Handled: true,
		Text:    "(2D6>=7) ＞ 8[3,5] ＞ 8 ＞ 成功",
		Outcome: check.Success,
		Audit:   table.Audit{{Source: "2D6", Index: 8, Dice: []int{3, 5}, Kind: table.KindDice}},
		Seed:    99,
	}
}

func TestNewRunnerWithDiceDefaults(t *testing.T) {
	if _, err := newRunnerWithDice(Config{}, nil); err == nil {
		t.Fatal("expected error without dice")
	}
	runner, err := newRunnerWithDice(Config{}, &fakeDice{})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if runner.timeout != 10*time.Second || runner.logger == nil {
		t.Fatalf("defaults not applied: timeout %v logger %v", runner.timeout, runner.logger)
	}
	if err := runner.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRunScenarioPassesDefaults(t *testing.T) {
	dice := &fakeDice{outcome: gorillaOutcome()}
	runner, logs := newTestRunner(t, dice, AssertionStrict)

	scenario, err := LoadScenario("defaults", `
local s = Scenario.new("defaults")
s:system("Gorilla")
s:seed(5)
s:roll("G>=7", {expect = {handled = true, outcome = "SUCCESS", contains = "成功", audit = 1, sources = {"2D6"}}})
s:roll({system = "Other", command = "X", seed = 6})
s:seed()
s:roll("G")
return s
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := runner.RunScenario(context.Background(), scenario); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(dice.requests) != 3 {
		t.Fatalf("requests = %d, want 3", len(dice.requests))
	}
	first, second, third := dice.requests[0], dice.requests[1], dice.requests[2]
	if first.System != "Gorilla" || first.Seed == nil || *first.Seed != 5 {
		t.Fatalf("first request = %+v", first)
	}
	if second.System != "Other" || second.Seed == nil || *second.Seed != 6 {
		t.Fatalf("second request = %+v", second)
	}
	if third.Seed != nil {
		t.Fatalf("third request seed = %v, want nil after reset", *third.Seed)
	}
	if !strings.Contains(logs.String(), "scenario done: defaults") {
		t.Fatalf("verbose log missing completion: %s", logs.String())
	}
}

func TestRunScenarioAssertionModes(t *testing.T) {
	source := `
local s = Scenario.new("mismatch")
s:system("Gorilla")
s:roll("G>=7", {expect = {text = "something else"}})
s:roll("G>=7", {expect = {handled = false}})
return s
`
	scenario, err := LoadScenario("mismatch", source)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	strict, _ := newTestRunner(t, &fakeDice{outcome: gorillaOutcome()}, AssertionStrict)
	err = strict.RunScenario(context.Background(), scenario)
	if err == nil || !strings.Contains(err.Error(), "step 2 (roll)") {
		t.Fatalf("strict error = %v, want failure at step 2", err)
	}

	lenient, logs := newTestRunner(t, &fakeDice{outcome: gorillaOutcome()}, AssertionLogOnly)
	if err := lenient.RunScenario(context.Background(), scenario); err != nil {
		t.Fatalf("log-only run: %v", err)
	}
	if got := strings.Count(logs.String(), "expectation failed"); got != 2 {
		t.Fatalf("logged failures = %d, want 2:\n%s", got, logs.String())
	}
}

func TestRunScenarioFailuresIgnoreMode(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "missing system", source: `local s = Scenario.new() s:roll("G") return s`, want: "no system"},
		{name: "bad seed", source: `local s = Scenario.new() s:system("G") s:roll({command = "G", seed = "x"}) return s`, want: "not a decimal integer"},
		{name: "unknown name", source: `local s = Scenario.new() s:system("G") s:roll({command = "G", same_as = "nope"}) return s`, want: "no roll named"},
		{name: "short replay", source: `local s = Scenario.new() s:system("G") s:replay({command = "G", times = 1}) return s`, want: "at least 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario, err := LoadScenario(tt.name, tt.source)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			runner, _ := newTestRunner(t, &fakeDice{outcome: gorillaOutcome()}, AssertionLogOnly)
			err = runner.RunScenario(context.Background(), scenario)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestExpectErrorStep(t *testing.T) {
	dice := &fakeDice{err: apperrors.WithMetadata(apperrors.CodeSystemUnknown, "unknown", map[string]string{"system": "Nope"})}
	runner, _ := newTestRunner(t, dice, AssertionStrict)

	pass, _ := LoadScenario("pass", `local s = Scenario.new() s:expect_error({system = "Nope", command = "G", code = "system_unknown"}) return s`)
	if err := runner.RunScenario(context.Background(), pass); err != nil {
		t.Fatalf("run: %v", err)
	}

	wrong, _ := LoadScenario("wrong", `local s = Scenario.new() s:expect_error({system = "Nope", command = "G", code = "COMMAND_EMPTY"}) return s`)
	if err := runner.RunScenario(context.Background(), wrong); err == nil {
		t.Fatal("expected code mismatch")
	}

	ok, _ := newTestRunner(t, &fakeDice{outcome: gorillaOutcome()}, AssertionStrict)
	if err := ok.RunScenario(context.Background(), pass); err == nil {
		t.Fatal("expected failure when the roll succeeds")
	}
}

func TestBundledScenarios(t *testing.T) {
	paths, err := filepath.Glob("scenarios/*.lua")
	if err != nil {
		t.Fatalf("glob scenarios: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no bundled scenarios")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			if err := RunFile(context.Background(), DefaultConfig(), path); err != nil {
				t.Fatalf("run %s: %v", path, err)
			}
		})
	}
}

func TestRunFileAgainstGameServer(t *testing.T) {
	svc, err := diceservice.Open(context.Background(), "")
	if err != nil {
		t.Fatalf("open dice service: %v", err)
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	grpcServer := grpc.NewServer()
	dicegrpc.RegisterDiceServiceServer(grpcServer, dicegrpc.NewService(svc))
	platformgrpc.RegisterHealth(grpcServer, dicegrpc.ServiceName)
	go func() {
		_ = grpcServer.Serve(listener)
	}()
	defer grpcServer.Stop()

	cfg := DefaultConfig()
	cfg.GRPCAddr = listener.Addr().String()
	if err := RunFile(context.Background(), cfg, "scenarios/systems.lua"); err != nil {
		t.Fatalf("run remote scenario: %v", err)
	}
}

func TestRunFileMissingScript(t *testing.T) {
	if err := RunFile(context.Background(), DefaultConfig(), filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatal("expected error for missing script")
	}
}
