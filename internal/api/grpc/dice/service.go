// Package dice exposes the dice service over gRPC as tableroll.v1.DiceService.
package dice

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/tableroll/internal/platform/errors"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

// Evaluator is the dice service behind the gRPC handlers.
type Evaluator interface {
	Roll(ctx context.Context, req diceservice.Request) (diceservice.Outcome, error)
	ListSystems(ctx context.Context) ([]diceservice.SystemInfo, error)
}

// Service implements DiceServiceServer.
type Service struct {
	dice Evaluator
}

// NewService wraps dice.
func NewService(dice Evaluator) *Service {
	return &Service{dice: dice}
}

// Roll evaluates one command.
func (s *Service) Roll(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "roll request is required")
	}
	if s.dice == nil {
		return nil, status.Error(codes.Internal, "dice service is not configured")
	}
	req, locale, err := DecodeRollRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	outcome, err := s.dice.Roll(ctx, req)
	if err != nil {
		return nil, apperrors.HandleError(err, locale)
	}
	response, err := EncodeOutcome(outcome)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode outcome: %v", err)
	}
	return response, nil
}

// ListSystems describes the registered game systems.
func (s *Service) ListSystems(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if s.dice == nil {
		return nil, status.Error(codes.Internal, "dice service is not configured")
	}
	list, err := s.dice.ListSystems(ctx)
	if err != nil {
		return nil, apperrors.HandleError(err, "")
	}
	response, err := EncodeSystems(list)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode systems: %v", err)
	}
	return response, nil
}
