package server

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	dicegrpc "github.com/louisbranch/tableroll/internal/api/grpc/dice"
	platformgrpc "github.com/louisbranch/tableroll/internal/platform/grpc"
)

// TestServeStopsOnContext verifies the server serves rolls and stops on cancel.
func TestServeStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grpcServer, err := New(ctx, Config{Addr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(ctx)
	}()

	conn, err := grpc.NewClient(
		grpcServer.Addr(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.WaitForReady(true)),
	)
	if err != nil {
		t.Fatalf("dial server: %v", err)
	}
	defer conn.Close()

	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()
	var header metadata.MD
	outcome, err := dicegrpc.NewClient(conn, "").Evaluate(callCtx, "Gorilla", "G>=7")
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if !outcome.Handled || outcome.Text == "" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	// The request id interceptor echoes an id in the response header.
	if err := conn.Invoke(callCtx, dicegrpc.DiceService_ListSystems_FullMethodName, emptyStruct(), emptyStruct(), grpc.Header(&header)); err != nil {
		t.Fatalf("list systems: %v", err)
	}
	if len(header.Get(platformgrpc.RequestIDHeader)) != 1 {
		t.Fatalf("expected request id header, got %v", header)
	}

	cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop in time")
	}
}

// TestHealthCheckReportsServing ensures the dice service reports SERVING.
func TestHealthCheckReportsServing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grpcServer, err := New(ctx, Config{Addr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	go func() {
		_ = grpcServer.Serve(ctx)
	}()

	conn, err := platformgrpc.Dial(ctx, grpcServer.Addr(), platformgrpc.DialOptions{
		Timeout: 2 * time.Second,
		Service: dicegrpc.ServiceName,
	})
	if err != nil {
		t.Fatalf("dial with health: %v", err)
	}
	defer conn.Close()

	response, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: dicegrpc.ServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if response.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("status = %v, want SERVING", response.GetStatus())
	}
}

// TestRunPortInUse verifies Run returns an error when the port is occupied.
func TestRunPortInUse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	if err := Run(context.Background(), Config{Addr: listener.Addr().String()}); err == nil {
		t.Fatal("expected error when port is already in use")
	}
}

// TestNewRejectsMissingCatalog verifies a bad catalog path fails startup.
func TestNewRejectsMissingCatalog(t *testing.T) {
	path := t.TempDir() + "/empty.db"
	if _, err := New(context.Background(), Config{Addr: "127.0.0.1:0", CatalogPath: path}); err == nil {
		t.Fatal("expected error for an empty catalog")
	}
}

// TestServeReturnsOnCancel verifies Serve returns promptly on cancel without connections.
func TestServeReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grpcServer, err := New(ctx, Config{Addr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(ctx)
	}()

	cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("server did not stop on cancel")
	}
}

// TestServeReturnsErrorOnClosedListener verifies Serve reports listener errors.
func TestServeReturnsErrorOnClosedListener(t *testing.T) {
	grpcServer, err := New(context.Background(), Config{Addr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if err := grpcServer.listener.Close(); err != nil {
		t.Fatalf("close listener: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := grpcServer.Serve(ctx); err == nil {
		t.Fatal("expected serve error after closing listener")
	}
}

func emptyStruct() *structpb.Struct {
	return &structpb.Struct{}
}
