package dice

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/tableroll/internal/platform/errors"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

// Client calls a remote DiceService. Its methods mirror the in-process dice
// service, and failures come back as domain errors.
type Client struct {
	conn   grpc.ClientConnInterface
	locale string
}

// NewClient returns a client on conn. locale selects error message language.
func NewClient(conn grpc.ClientConnInterface, locale string) *Client {
	return &Client{conn: conn, locale: locale}
}

// Evaluate resolves command for systemID with a fresh seed.
func (c *Client) Evaluate(ctx context.Context, systemID, command string) (diceservice.Outcome, error) {
	return c.Roll(ctx, diceservice.Request{System: systemID, Command: command})
}

// Roll evaluates one command remotely.
func (c *Client) Roll(ctx context.Context, req diceservice.Request) (diceservice.Outcome, error) {
	if c == nil || c.conn == nil {
		return diceservice.Outcome{}, errors.New("dice client is not configured")
	}
	in, err := EncodeRollRequest(req, c.locale)
	if err != nil {
		return diceservice.Outcome{}, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, DiceService_Roll_FullMethodName, in, out); err != nil {
		return diceservice.Outcome{}, apperrors.FromGRPCStatus(err)
	}
	return DecodeOutcome(out)
}

// ListSystems lists the remote game systems.
func (c *Client) ListSystems(ctx context.Context) ([]diceservice.SystemInfo, error) {
	if c == nil || c.conn == nil {
		return nil, errors.New("dice client is not configured")
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, DiceService_ListSystems_FullMethodName, &structpb.Struct{}, out); err != nil {
		return nil, apperrors.FromGRPCStatus(err)
	}
	return DecodeSystems(out)
}
