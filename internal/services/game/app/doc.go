// Package server composes the game gRPC entrypoint: the dice service, its
// gRPC handlers, health reporting and the request id and tracing interceptors.
package server
