package scenario

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(flag.NewFlagSet("scenario", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.GRPCAddr != "" {
		t.Fatalf("expected in-process default, got %q", cfg.GRPCAddr)
	}
	if !cfg.Assertions {
		t.Fatal("expected assertions to default to true")
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s", cfg.Timeout)
	}
}

func TestParseConfigFlags(t *testing.T) {
	cfg, err := ParseConfig(flag.NewFlagSet("scenario", flag.ContinueOnError), []string{"-scenario", "a.lua", "-assert=false", "-verbose", "-timeout", "2s"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Scenario != "a.lua" || cfg.Assertions || !cfg.Verbose || cfg.Timeout != 2*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestRunRequiresScenario(t *testing.T) {
	if err := Run(context.Background(), Config{}, nil); err == nil {
		t.Fatal("expected error without scenario path")
	}
}

func TestRunLogsExpectationsWhenAssertionsDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soft.lua")
	script := `
local s = Scenario.new("soft")
s:system("Gorilla")
s:roll("G", {expect = {handled = false}})
return s
`
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	var errOut bytes.Buffer
	if err := Run(context.Background(), Config{Scenario: path, Timeout: time.Second}, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(errOut.String(), "expectation failed") {
		t.Fatalf("expected logged expectation, got %q", errOut.String())
	}

	if err := Run(context.Background(), Config{Scenario: path, Assertions: true, Timeout: time.Second}, nil); err == nil {
		t.Fatal("expected strict run to fail")
	}
}
