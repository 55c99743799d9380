// Package errors provides coded errors that map onto gRPC and HTTP statuses
// and carry localized user messages.
package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeSystemRequired Code = "SYSTEM_REQUIRED"
	CodeSystemUnknown  Code = "SYSTEM_UNKNOWN"
	CodeCommandEmpty   Code = "COMMAND_EMPTY"
	CodeCommandTooLong Code = "COMMAND_TOO_LONG"
	CodeRequestInvalid Code = "REQUEST_INVALID"

	// Content errors
	CodeTableUnknown   Code = "TABLE_UNKNOWN"
	CodeTableIntegrity Code = "TABLE_INTEGRITY"

	// Random/seed errors
	CodeSeedUnavailable Code = "SEED_UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeSystemRequired,
		CodeCommandEmpty,
		CodeCommandTooLong,
		CodeRequestInvalid:
		return codes.InvalidArgument

	// NotFound - resource doesn't exist
	case CodeSystemUnknown:
		return codes.NotFound

	// Unavailable - entropy could not be read
	case CodeSeedUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
