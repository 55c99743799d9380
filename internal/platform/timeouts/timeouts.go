// Package timeouts defines the timeouts shared by tableroll services.
package timeouts

import "time"

// GRPCDial caps connecting to the game server, health wait included.
const GRPCDial = 2 * time.Second

// GRPCRequest caps a single roll or listing call forwarded to the game server.
const GRPCRequest = 2 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server drains in-flight requests.
const Shutdown = 5 * time.Second
