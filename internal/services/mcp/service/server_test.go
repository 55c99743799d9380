package service

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"

	dicegrpc "github.com/louisbranch/tableroll/internal/api/grpc/dice"
	platformgrpc "github.com/louisbranch/tableroll/internal/platform/grpc"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
	"github.com/louisbranch/tableroll/internal/services/mcp/domain"
)

func openDice(t *testing.T) *diceservice.Service {
	t.Helper()
	svc, err := diceservice.Open(context.Background(), "")
	if err != nil {
		t.Fatalf("open dice service: %v", err)
	}
	return svc
}

// connectInMemory serves s over in-memory transports and returns a client session.
func connectInMemory(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() {
		session.Close()
		cancel()
		select {
		case <-serveErr:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop after cancel")
		}
	})
	return session
}

func callRoll(t *testing.T, session *mcp.ClientSession, args map[string]any) (*mcp.CallToolResult, domain.RollCommandResult) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "roll_command", Arguments: args})
	if err != nil {
		t.Fatalf("call roll_command: %v", err)
	}
	var out domain.RollCommandResult
	if result.IsError {
		return result, out
	}
	decodeStructured(t, result, &out)
	return result, out
}

func decodeStructured(t *testing.T, result *mcp.CallToolResult, out any) {
	t.Helper()
	raw, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode structured content: %v", err)
	}
}

func TestServeRequiresConfiguredServer(t *testing.T) {
	var server *Server
	if err := server.Serve(context.Background()); err == nil {
		t.Fatal("expected error for nil server")
	}
	if err := (&Server{}).Serve(context.Background()); err == nil {
		t.Fatal("expected error for unconfigured server")
	}
}

func TestServeStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := New(openDice(t))
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), time.Second)
	defer clientCancel()
	clientSession, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	defer clientSession.Close()

	cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestToolsAreListed(t *testing.T) {
	session := connectInMemory(t, New(openDice(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	list, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range list.Tools {
		names[tool.Name] = true
	}
	for _, name := range []string{"roll_command", "list_systems"} {
		if !names[name] {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestRollCommandReplaysSeed(t *testing.T) {
	session := connectInMemory(t, New(openDice(t)))

	args := map[string]any{"system": "Gorilla", "command": "G>=7", "seed": 42}
	result, first := callRoll(t, session, args)
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
	if !first.Handled || first.Seed != 42 {
		t.Fatalf("result = %+v, want handled roll with seed 42", first)
	}
	if !strings.HasPrefix(first.Text, "(2D6>=7) ＞ ") {
		t.Fatalf("text = %q", first.Text)
	}
	if len(first.Audit) == 0 || first.Audit[0].Kind != "dice" {
		t.Fatalf("audit = %+v, want dice draws", first.Audit)
	}
	if result.Meta[domain.RequestIDMetaKey] == nil {
		t.Fatal("expected request id metadata")
	}

	_, second := callRoll(t, session, args)
	if second.Text != first.Text {
		t.Fatalf("replay text = %q, want %q", second.Text, first.Text)
	}
}

func TestRollCommandUnhandled(t *testing.T) {
	session := connectInMemory(t, New(openDice(t)))

	result, out := callRoll(t, session, map[string]any{"system": "OrgaRain", "command": "hello"})
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
	if out.Handled || out.Text != "" {
		t.Fatalf("result = %+v, want unhandled", out)
	}
	if out.Audit == nil {
		t.Fatal("expected empty audit list, got nil")
	}
}

func TestRollCommandUnknownSystem(t *testing.T) {
	session := connectInMemory(t, New(openDice(t)))

	result, _ := callRoll(t, session, map[string]any{"system": "Nope", "command": "1D6"})
	if !result.IsError {
		t.Fatal("expected tool error for unknown system")
	}
}

func TestListSystems(t *testing.T) {
	session := connectInMemory(t, New(openDice(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "list_systems", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call list_systems: %v", err)
	}
	var out domain.ListSystemsResult
	decodeStructured(t, result, &out)
	if len(out.Systems) != 4 {
		t.Fatalf("systems = %d, want 4", len(out.Systems))
	}
	for _, system := range out.Systems {
		if system.Help == "" {
			t.Errorf("system %s has no help text", system.ID)
		}
	}
}

func TestRunUnsupportedTransport(t *testing.T) {
	err := Run(context.Background(), Config{Transport: "carrier-pigeon"})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("Run error = %v, want unsupported transport", err)
	}
}

func TestConnectMissingCatalog(t *testing.T) {
	_, err := Connect(context.Background(), Config{CatalogPath: t.TempDir() + "/missing/catalog.db"})
	if err == nil {
		t.Fatal("expected error for missing catalog directory")
	}
}

func TestHTTPHandler(t *testing.T) {
	httpServer := httptest.NewServer(New(openDice(t)).Handler())
	defer httpServer.Close()

	resp, err := http.Get(httpServer.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: httpServer.URL + "/mcp"}, nil)
	if err != nil {
		t.Fatalf("connect over HTTP: %v", err)
	}
	defer session.Close()

	result, out := callRoll(t, session, map[string]any{"system": "OrgaRain", "command": "3OR12", "seed": 5})
	if result.IsError || !out.Handled {
		t.Fatalf("result = %+v, want handled roll", out)
	}
}

func TestServeHTTPStopsOnContext(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- New(openDice(t)).serveHTTP(ctx, listener)
	}()
	cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve HTTP returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("HTTP server did not stop after cancel")
	}
}

func TestConnectUsesGameServer(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	grpcServer := grpc.NewServer()
	dicegrpc.RegisterDiceServiceServer(grpcServer, dicegrpc.NewService(openDice(t)))
	platformgrpc.RegisterHealth(grpcServer, dicegrpc.ServiceName)
	go func() {
		_ = grpcServer.Serve(listener)
	}()
	defer grpcServer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	server, err := Connect(ctx, Config{GRPCAddr: listener.Addr().String()})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if server.conn == nil {
		t.Fatal("expected gRPC connection")
	}
	session := connectInMemory(t, server)

	result, out := callRoll(t, session, map[string]any{"system": "Kamigakari:Korean", "command": "MT", "seed": 11})
	if result.IsError || !out.Handled {
		t.Fatalf("result = %+v, want handled roll", out)
	}
	if out.Seed != 11 {
		t.Fatalf("seed = %d, want 11", out.Seed)
	}

	result, _ = callRoll(t, session, map[string]any{"system": "Nope", "command": "MT"})
	if !result.IsError {
		t.Fatal("expected tool error for unknown system over gRPC")
	}
}
