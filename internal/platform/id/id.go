// Package id generates the request and invocation ids carried in gRPC and
// MCP metadata.
//
// Ids are UUIDv4 bytes encoded as lowercase unpadded base32, 26 characters
// long and safe for headers, URLs and file paths.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new random id.
func NewID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(u[:])), nil
}
