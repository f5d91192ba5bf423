package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: checkpoint may be corrupted")
	ErrHeaderTooLarge     = errors.New("checkpoint header exceeds maximum size")
	ErrInvalidMagic       = errors.New("not an xnn checkpoint")
	ErrUnsupportedVersion = errors.New("unsupported checkpoint version")
	ErrTensorNotFound     = errors.New("tensor not found in checkpoint")

	// ErrInvalidCheckpoint is matched by every *ValidationError.
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")
)

// ValidationError describes a structural problem in a checkpoint header.
type ValidationError struct {
	Type    string // Kind of problem, e.g. "offset_overlap" or "missing_tensor"
	Tensor  string // Tensor or layer involved
	Tensor2 string // Second tensor, for overlaps
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch {
	case e.Tensor2 != "":
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	case e.Tensor != "":
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Details)
	}
}

// Unwrap returns ErrInvalidCheckpoint.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidCheckpoint
}
