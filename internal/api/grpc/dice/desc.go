package dice

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name, also used for health.
const ServiceName = "tableroll.v1.DiceService"

const (
	DiceService_Roll_FullMethodName        = "/tableroll.v1.DiceService/Roll"
	DiceService_ListSystems_FullMethodName = "/tableroll.v1.DiceService/ListSystems"
)

// DiceServiceServer is the server API for DiceService. Messages are
// structpb.Struct values; codec.go defines their fields.
type DiceServiceServer interface {
	Roll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSystems(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDiceServiceServer registers srv on s.
func RegisterDiceServiceServer(s grpc.ServiceRegistrar, srv DiceServiceServer) {
	s.RegisterService(&DiceService_ServiceDesc, srv)
}

func _DiceService_Roll_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiceServiceServer).Roll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: DiceService_Roll_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DiceServiceServer).Roll(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _DiceService_ListSystems_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiceServiceServer).ListSystems(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: DiceService_ListSystems_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DiceServiceServer).ListSystems(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// DiceService_ServiceDesc is the grpc.ServiceDesc for DiceService.
var DiceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Roll",
			Handler:    _DiceService_Roll_Handler,
		},
		{
			MethodName: "ListSystems",
			Handler:    _DiceService_ListSystems_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tableroll/v1/dice.proto",
}
