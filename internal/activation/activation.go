// Package activation implements the stateless activation functions used by
// xnn layers, together with their derivatives.
//
// All functions operate on a single row vector represented as a []float64
// and return a freshly allocated slice; inputs are never modified.
package activation

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ReLU applies the rectified linear unit: f(x) = max(0, x).
//
// Non-negative entries pass through unchanged, so applying ReLU to an
// already-clamped vector is a no-op.
func ReLU(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v > 0 {
			out[i] = v
		}
	}
	return out
}

// ReLUDerivative returns 1 where x > 0 and 0 elsewhere.
//
// The derivative at exactly 0 is taken as 0, matching the clamp-at-zero
// convention of ReLU.
func ReLUDerivative(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v > 0 {
			out[i] = 1
		}
	}
	return out
}

// Softmax maps x to a probability vector: exp(x_i) / Σ exp(x_j).
//
// The maximum entry is subtracted before exponentiation. The result is the
// same up to rounding, but large logits no longer overflow.
func Softmax(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}

	shift := floats.Max(x)
	for i, v := range x {
		out[i] = math.Exp(v - shift)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

// Identity returns a copy of x.
func Identity(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	return out
}

// Apply evaluates the activation of the given kind on x.
func Apply(k Kind, x []float64) []float64 {
	switch k {
	case ReLUKind:
		return ReLU(x)
	case SoftmaxKind:
		return Softmax(x)
	default:
		return Identity(x)
	}
}

// Backward propagates grad (dL/d output) through the activation and returns
// dL/d net.
//
// net is the pre-activation vector and out the activation result for the
// same example. For elementwise activations this is grad ⊙ f'(net); for
// softmax it is the full Jacobian product out ⊙ (grad - <grad, out>).
func Backward(k Kind, net, out, grad []float64) []float64 {
	switch k {
	case ReLUKind:
		d := ReLUDerivative(net)
		floats.Mul(d, grad)
		return d
	case SoftmaxKind:
		dot := floats.Dot(grad, out)
		d := make([]float64, len(grad))
		for i := range d {
			d[i] = out[i] * (grad[i] - dot)
		}
		return d
	default:
		return Identity(grad)
	}
}
