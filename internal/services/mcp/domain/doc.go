// Package domain defines the MCP tools exposed by tableroll and the handlers
// that forward them to the dice service.
package domain
