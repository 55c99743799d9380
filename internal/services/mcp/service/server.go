package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"

	dicegrpc "github.com/louisbranch/tableroll/internal/api/grpc/dice"
	platformgrpc "github.com/louisbranch/tableroll/internal/platform/grpc"
	"github.com/louisbranch/tableroll/internal/platform/timeouts"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
	"github.com/louisbranch/tableroll/internal/services/mcp/domain"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "tableroll"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves the streamable HTTP transport.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	// GRPCAddr is the game server address. Empty evaluates in process.
	GRPCAddr  string
	Transport TransportKind
	// HTTPAddr is the HTTP listen address. Defaults to localhost:8081.
	HTTPAddr string
	// CatalogPath selects the in-process table catalog; see dice.LoadTables.
	CatalogPath string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
}

// New creates an MCP server whose tools call dice.
func New(dice domain.Dice) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerDiceTools(mcpServer, dice)
	return &Server{mcpServer: mcpServer}
}

// Connect builds a server for cfg: a gRPC client of the game server when
// GRPCAddr is set, the in-process dice service otherwise.
func Connect(ctx context.Context, cfg Config) (*Server, error) {
	addr := strings.TrimSpace(cfg.GRPCAddr)
	if addr == "" {
		dice, err := diceservice.Open(ctx, cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		return New(dice), nil
	}

	conn, err := platformgrpc.Dial(ctx, addr, platformgrpc.DialOptions{
		Timeout: timeouts.GRPCDial,
		Service: dicegrpc.ServiceName,
		Logf:    log.Printf,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to game server at %s: %w", addr, err)
	}
	server := New(dicegrpc.NewClient(conn, ""))
	server.conn = conn
	return server, nil
}

// Run creates and serves the MCP server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return runWithTransport(ctx, cfg, &mcp.StdioTransport{})
	case TransportHTTP:
		return runWithHTTPTransport(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Close releases the gRPC connection held by the server.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close gRPC connection: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close gRPC connection: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// runWithTransport creates a server and serves it over the provided transport.
func runWithTransport(ctx context.Context, cfg Config, transport mcp.Transport) error {
	mcpServer, err := Connect(ctx, cfg)
	if err != nil {
		return err
	}
	return mcpServer.serveWithTransport(ctx, transport)
}
