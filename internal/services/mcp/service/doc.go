// Package service hosts the tableroll MCP server over stdio or streamable
// HTTP, backed by the game server or an in-process dice service.
package service
