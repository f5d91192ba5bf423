package activation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by ParseKind for names it does not recognize.
var ErrUnknownKind = errors.New("unknown activation")

// Kind selects the activation applied by a Dense layer.
type Kind int

// Supported activation kinds. The zero value is the identity.
const (
	IdentityKind Kind = iota
	ReLUKind
	SoftmaxKind
)

// String returns the lowercase name of the activation.
func (k Kind) String() string {
	switch k {
	case IdentityKind:
		return "identity"
	case ReLUKind:
		return "relu"
	case SoftmaxKind:
		return "softmax"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a name into a Kind.
//
// Matching is case-insensitive; "linear" is accepted as an alias of
// "identity".
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "identity", "linear", "":
		return IdentityKind, nil
	case "relu":
		return ReLUKind, nil
	case "softmax":
		return SoftmaxKind, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}
