// Package api contains API service implementations.
//
// # gRPC Services
//
// The grpc subpackage holds gRPC services by domain:
//
//   - grpc/dice/: tableroll.v1.DiceService (Roll, ListSystems) over structpb
//     messages, plus the matching client used by the MCP, web and CLI front ends
//
// Domain errors cross the wire as status codes with an ErrorInfo detail and
// are rebuilt on the client side, so every front end maps them the same way.
package api
