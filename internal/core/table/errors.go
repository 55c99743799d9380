package table

import (
	"errors"
	"fmt"
)

var (
	// ErrIntegrity marks malformed table data. Shipped tables are validated at
	// load, so seeing it at roll time means the catalog was built by hand.
	ErrIntegrity = errors.New("table integrity")
	// ErrUnknownTable is returned for an id missing from the catalog.
	ErrUnknownTable = errors.New("unknown table")
)

// IntegrityError describes one data-integrity violation.
type IntegrityError struct {
	Table  string
	Index  int
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.Index != 0 {
		return fmt.Sprintf("table %s index %d: %s", e.Table, e.Index, e.Reason)
	}
	return fmt.Sprintf("table %s: %s", e.Table, e.Reason)
}

// Unwrap lets errors.Is match ErrIntegrity.
func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}

func integrity(table string, index int, format string, args ...any) error {
	return &IntegrityError{Table: table, Index: index, Reason: fmt.Sprintf(format, args...)}
}
