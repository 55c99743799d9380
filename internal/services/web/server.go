package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"google.golang.org/grpc"

	dicegrpc "github.com/louisbranch/tableroll/internal/api/grpc/dice"
	platformgrpc "github.com/louisbranch/tableroll/internal/platform/grpc"
	"github.com/louisbranch/tableroll/internal/platform/timeouts"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

// Config configures the HTTP API server.
type Config struct {
	// HTTPAddr is the listen address.
	HTTPAddr string
	// GRPCAddr is the game server address. Empty evaluates in process.
	GRPCAddr string
	// CatalogPath selects the in-process table catalog; see dice.LoadTables.
	CatalogPath string
	// AllowedOrigins lists CORS origins; empty allows any.
	AllowedOrigins []string
}

// Server hosts the HTTP API.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	conn       *grpc.ClientConn
}

// New builds a server listening on cfg.HTTPAddr.
func New(ctx context.Context, cfg Config) (*Server, error) {
	dice, conn, err := connectDice(ctx, cfg)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           NewHandler(dice, cfg.AllowedOrigins),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		conn: conn,
	}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves the HTTP API until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve serves requests until the context ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil || s.httpServer == nil || s.listener == nil {
		return errors.New("web server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeConn()

	log.Printf("web server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown web server: %w", err)
		}
		<-serveErr
		return nil
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve web: %w", err)
	}
}

func (s *Server) closeConn() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		log.Printf("close game server connection: %v", err)
	}
	s.conn = nil
}

// connectDice returns the game server client when cfg.GRPCAddr is set and
// the in-process dice service otherwise.
func connectDice(ctx context.Context, cfg Config) (Dice, *grpc.ClientConn, error) {
	addr := strings.TrimSpace(cfg.GRPCAddr)
	if addr == "" {
		svc, err := diceservice.Open(ctx, cfg.CatalogPath)
		if err != nil {
			return nil, nil, err
		}
		return svc, nil, nil
	}
	conn, err := platformgrpc.Dial(ctx, addr, platformgrpc.DialOptions{
		Timeout: timeouts.GRPCDial,
		Service: dicegrpc.ServiceName,
		Logf:    log.Printf,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to game server at %s: %w", addr, err)
	}
	return dicegrpc.NewClient(conn, ""), conn, nil
}
