package nn

import "errors"

// Common errors.
var (
	ErrShapeMismatch       = errors.New("nn: shape mismatch")
	ErrLengthMismatch      = errors.New("nn: length mismatch")
	ErrEmpty               = errors.New("nn: empty input")
	ErrNotComputed         = errors.New("nn: layer has not computed an output")
	ErrNoDownstreamWeights = errors.New("nn: next layer has no weights")
	ErrInvalidLabel        = errors.New("nn: invalid label")
	ErrInvalidSplit        = errors.New("nn: invalid validation split")
	ErrUnknownLayer        = errors.New("nn: unknown layer kind")
	ErrUnknownGradientMode = errors.New("nn: unknown gradient mode")
)
