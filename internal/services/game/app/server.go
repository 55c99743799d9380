package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	dicegrpc "github.com/louisbranch/tableroll/internal/api/grpc/dice"
	platformgrpc "github.com/louisbranch/tableroll/internal/platform/grpc"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

// Config selects where the game server listens and which tables it serves.
type Config struct {
	// Addr overrides Port when set.
	Addr string
	Port int
	// CatalogPath points at a SQLite catalog; empty uses the embedded tables.
	CatalogPath string
	// Options customize the dice service.
	Options []diceservice.Option
}

func (c Config) listenAddr() string {
	if addr := strings.TrimSpace(c.Addr); addr != "" {
		return addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// Server hosts the tableroll game server.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
}

// New creates a configured game server listening on the configured address.
func New(ctx context.Context, cfg Config) (*Server, error) {
	dice, err := diceservice.Open(ctx, cfg.CatalogPath, cfg.Options...)
	if err != nil {
		return nil, err
	}

	addr := cfg.listenAddr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(platformgrpc.RequestIDServerInterceptor()),
	)
	dicegrpc.RegisterDiceServiceServer(grpcServer, dicegrpc.NewService(dice))
	healthServer := platformgrpc.RegisterHealth(grpcServer, dicegrpc.ServiceName)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
	}, nil
}

// Addr returns the listener address for the game server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a game server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	grpcServer, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return grpcServer.Serve(ctx)
}

// Serve starts the game server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log.Printf("game server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		err := <-serveErr
		return handleErr(err)
	case err := <-serveErr:
		return handleErr(err)
	}
}
