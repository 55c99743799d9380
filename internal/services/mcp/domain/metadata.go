package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc/metadata"

	"github.com/louisbranch/tableroll/internal/platform/id"
	"github.com/louisbranch/tableroll/internal/platform/requestctx"
)

// RequestIDMetaKey and InvocationIDMetaKey name the correlation ids in tool
// result metadata. InvocationIDMetaKey is also sent as gRPC metadata.
const (
	RequestIDMetaKey    = "x-tableroll-request-id"
	InvocationIDMetaKey = "x-tableroll-invocation-id"
)

// ToolCallMetadata carries correlation identifiers for MCP tool calls.
type ToolCallMetadata struct {
	RequestID    string
	InvocationID string
}

// NewInvocationID generates an invocation identifier for a tool call.
func NewInvocationID() (string, error) {
	return id.NewID()
}

// NewRequestID generates a request identifier for a dice call.
func NewRequestID() (string, error) {
	return id.NewID()
}

// NewCallContext stores a fresh request id in ctx and attaches the invocation
// id as outgoing metadata. Remote clients forward the request id from ctx.
func NewCallContext(ctx context.Context, invocationID string) (context.Context, ToolCallMetadata, error) {
	requestID, err := NewRequestID()
	if err != nil {
		return nil, ToolCallMetadata{}, err
	}

	callCtx := requestctx.WithRequestID(ctx, requestID)
	if invocationID != "" {
		callCtx = metadata.AppendToOutgoingContext(callCtx, InvocationIDMetaKey, invocationID)
	}
	return callCtx, ToolCallMetadata{RequestID: requestID, InvocationID: invocationID}, nil
}

// CallToolResultWithMetadata builds a tool result with correlation metadata.
func CallToolResultWithMetadata(meta ToolCallMetadata) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Meta: map[string]any{
			RequestIDMetaKey: meta.RequestID,
		},
	}
	if meta.InvocationID != "" {
		result.Meta[InvocationIDMetaKey] = meta.InvocationID
	}
	return result
}
