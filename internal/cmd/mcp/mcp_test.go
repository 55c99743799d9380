package mcp

import (
	"context"
	"flag"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(flag.NewFlagSet("mcp", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "" {
		t.Fatalf("expected in-process default, got addr %q", cfg.Addr)
	}
	if cfg.HTTPAddr != "localhost:8081" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected stdio transport, got %q", cfg.Transport)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("TABLEROLL_MCP_TRANSPORT", "http")
	cfg, err := ParseConfig(flag.NewFlagSet("mcp", flag.ContinueOnError), []string{"-addr", "game:8082", "-http-addr", "0.0.0.0:9000"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "game:8082" || cfg.HTTPAddr != "0.0.0.0:9000" || cfg.Transport != "http" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	err := Run(context.Background(), Config{Transport: "smoke"})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("error = %v, want unsupported transport", err)
	}
}
