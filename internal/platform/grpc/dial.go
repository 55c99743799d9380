// Package grpc holds the gRPC plumbing shared by the tableroll server and its
// clients: dialing with a health gate, health serving and request ids.
package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DialStage describes where a dial attempt failed.
type DialStage string

const (
	// DialStageConnect indicates the client could not be created.
	DialStageConnect DialStage = "connect"
	// DialStageHealth indicates the health check never reported SERVING.
	DialStageHealth DialStage = "health"
)

// DialError wraps dial and health check failures with a stage indicator.
type DialError struct {
	Stage DialStage
	Err   error
}

func (e *DialError) Error() string {
	if e == nil {
		return "gRPC dial error"
	}
	return fmt.Sprintf("gRPC %s error: %v", e.Stage, e.Err)
}

func (e *DialError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DialOptions configures Dial.
type DialOptions struct {
	// Timeout bounds connecting plus the health wait. Zero uses the context.
	Timeout time.Duration
	// Service is the health service name to wait for. Empty checks the server.
	Service string
	// Logf receives progress messages; nil discards them.
	Logf func(string, ...any)
	// Extra is appended to DefaultClientDialOptions.
	Extra []gogrpc.DialOption
}

// DefaultClientDialOptions are the options every tableroll client uses:
// plaintext, trace propagation and request ids.
func DefaultClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		gogrpc.WithChainUnaryInterceptor(RequestIDClientInterceptor()),
	}
}

// Dial connects to addr and waits until its health service is SERVING. The
// connection is closed when the health wait fails.
func Dial(ctx context.Context, addr string, opts DialOptions) (*gogrpc.ClientConn, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := gogrpc.NewClient(addr, append(DefaultClientDialOptions(), opts.Extra...)...)
	if err != nil {
		return nil, &DialError{Stage: DialStageConnect, Err: err}
	}

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	if err := WaitForHealth(waitCtx, conn, opts.Service, opts.Logf); err != nil {
		_ = conn.Close()
		return nil, &DialError{Stage: DialStageHealth, Err: err}
	}
	return conn, nil
}
