package ledger

import (
	"errors"
	"fmt"
)

// Set of error variables for the ledger.
var (
	ErrNotFound       = errors.New("transaction not found")
	ErrInvalidAddress = errors.New("invalid sender address: must be a 58 character chain address")
)

// UpstreamError wraps a failure from the chain node or indexer. The
// upstream reason is preserved verbatim, never swallowed.
type UpstreamError struct {
	Op  string
	Err error
}

// NewUpstreamError constructs an upstream error for the specified
// operation.
func NewUpstreamError(op string, err error) error {
	return &UpstreamError{
		Op:  op,
		Err: err,
	}
}

// Error implements the error interface.
func (ue *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", ue.Op, ue.Err)
}

// Unwrap exposes the wrapped upstream failure.
func (ue *UpstreamError) Unwrap() error {
	return ue.Err
}

// IsUpstreamError checks if an error of type UpstreamError exists.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
