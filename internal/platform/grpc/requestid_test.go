package grpc

import (
	"context"
	"testing"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestRequestIDServerInterceptorKeepsIncomingID(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "abc"))
	var got string
	_, err := RequestIDServerInterceptor()(ctx, nil, &gogrpc.UnaryServerInfo{}, func(ctx context.Context, _ any) (any, error) {
		got = RequestIDFromContext(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if got != "abc" {
		t.Fatalf("request id = %q, want abc", got)
	}
}

func TestRequestIDServerInterceptorGeneratesID(t *testing.T) {
	var got string
	_, err := RequestIDServerInterceptor()(context.Background(), nil, &gogrpc.UnaryServerInfo{}, func(ctx context.Context, _ any) (any, error) {
		got = RequestIDFromContext(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if len(got) != 26 {
		t.Fatalf("generated request id = %q", got)
	}
}

func TestRequestIDClientInterceptorPropagatesContextID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "from-ctx")
	var sent []string
	invoker := func(ctx context.Context, _ string, _, _ any, _ *gogrpc.ClientConn, _ ...gogrpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		sent = md.Get(RequestIDHeader)
		return nil
	}
	if err := RequestIDClientInterceptor()(ctx, "/svc/Method", nil, nil, nil, invoker); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if len(sent) != 1 || sent[0] != "from-ctx" {
		t.Fatalf("sent ids = %v", sent)
	}
}
