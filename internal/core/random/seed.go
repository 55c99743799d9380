// Package random provides seed generation for live dice rollers.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

// NewSeed generates a seed using crypto/rand.
func NewSeed() (int64, error) {
	return SeedFrom(crand.Reader)
}

// SeedFrom reads eight bytes from r and interprets them as a little-endian seed.
func SeedFrom(r io.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
