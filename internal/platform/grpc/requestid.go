package grpc

import (
	"context"
	"strings"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/louisbranch/tableroll/internal/platform/id"
	"github.com/louisbranch/tableroll/internal/platform/requestctx"
)

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "x-tableroll-request-id"

// WithRequestID stores a request id in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return requestctx.WithRequestID(ctx, requestID)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	return requestctx.RequestIDFromContext(ctx)
}

// RequestIDServerInterceptor takes the caller's request id, or makes one,
// stores it in the handler context and echoes it in the response header.
func RequestIDServerInterceptor() gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(RequestIDHeader); len(values) > 0 {
				requestID = strings.TrimSpace(values[0])
			}
		}
		if requestID == "" {
			generated, err := id.NewID()
			if err != nil {
				return nil, err
			}
			requestID = generated
		}
		_ = gogrpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))
		return handler(WithRequestID(ctx, requestID), req)
	}
}

// RequestIDClientInterceptor attaches the context's request id, or a new one,
// to outgoing calls.
func RequestIDClientInterceptor() gogrpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *gogrpc.ClientConn, invoker gogrpc.UnaryInvoker, opts ...gogrpc.CallOption) error {
		if md, ok := metadata.FromOutgoingContext(ctx); !ok || len(md.Get(RequestIDHeader)) == 0 {
			requestID := RequestIDFromContext(ctx)
			if requestID == "" {
				generated, err := id.NewID()
				if err != nil {
					return err
				}
				requestID = generated
			}
			ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, requestID)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
