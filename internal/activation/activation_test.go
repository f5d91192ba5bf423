package activation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestReLU(t *testing.T) {
	x := []float64{-2, -0.5, 0, 0.5, 3}
	got := ReLU(x)

	assert.Equal(t, []float64{0, 0, 0, 0.5, 3}, got)
	// Input untouched.
	assert.Equal(t, []float64{-2, -0.5, 0, 0.5, 3}, x)
}

func TestReLUIdempotent(t *testing.T) {
	for _, x := range [][]float64{
		{1},
		{-1},
		{0, -3, 7, 2.5, -0.001},
		make([]float64, 17),
	} {
		once := ReLU(x)
		assert.Equal(t, once, ReLU(once))
		for i, v := range once {
			assert.GreaterOrEqual(t, v, 0.0)
			if x[i] >= 0 {
				assert.Equal(t, x[i], v)
			}
		}
	}
}

func TestReLUDerivative(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"single positive", []float64{3}, []float64{1}},
		{"single zero", []float64{0}, []float64{0}},
		{"single negative", []float64{-1e-9}, []float64{0}},
		{"mixed", []float64{-1, 0, 1e-12, 5, -7}, []float64{0, 0, 1, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReLUDerivative(tt.in))
		})
	}
}

func TestSoftmax(t *testing.T) {
	inputs := [][]float64{
		{0},
		{1, 2, 3},
		{-5, 0, 5, 10},
		{1000, 1000.5, 999}, // overflows without the max shift
		{-1000, -1001, -999},
	}

	for _, x := range inputs {
		p := Softmax(x)
		require.Len(t, p, len(x))
		assert.InDelta(t, 1.0, floats.Sum(p), 1e-12)
		for _, v := range p {
			assert.False(t, math.IsNaN(v))
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestSoftmaxKnownValues(t *testing.T) {
	p := Softmax([]float64{1, 2, 3})

	// e^1, e^2, e^3 normalized.
	assert.InDelta(t, 0.09003057, p[0], 1e-8)
	assert.InDelta(t, 0.24472847, p[1], 1e-8)
	assert.InDelta(t, 0.66524096, p[2], 1e-8)
}

func TestSoftmaxEmpty(t *testing.T) {
	assert.Empty(t, Softmax(nil))
}

func TestIdentity(t *testing.T) {
	x := []float64{-1, 0, 2}
	y := Identity(x)
	assert.Equal(t, x, y)

	y[0] = 42
	assert.Equal(t, -1.0, x[0], "Identity must return a copy")
}

func TestApplyDispatch(t *testing.T) {
	x := []float64{-1, 2}

	assert.Equal(t, Identity(x), Apply(IdentityKind, x))
	assert.Equal(t, ReLU(x), Apply(ReLUKind, x))
	assert.Equal(t, Softmax(x), Apply(SoftmaxKind, x))
}

// TestBackwardMatchesJacobian checks each vector-Jacobian product against a
// central-difference Jacobian of the forward function.
func TestBackwardMatchesJacobian(t *testing.T) {
	net := []float64{0.3, -1.2, 2.0, 0.7}
	grad := []float64{0.5, -0.25, 1.5, -2.0}

	for _, k := range []Kind{IdentityKind, ReLUKind, SoftmaxKind} {
		t.Run(k.String(), func(t *testing.T) {
			n := len(net)
			jac := mat.NewDense(n, n, nil)
			fd.Jacobian(jac, func(y, x []float64) {
				copy(y, Apply(k, x))
			}, net, &fd.JacobianSettings{Formula: fd.Central})

			var want mat.VecDense
			want.MulVec(jac.T(), mat.NewVecDense(n, grad))

			got := Backward(k, net, Apply(k, net), grad)
			for i := range got {
				assert.InDelta(t, want.AtVec(i), got[i], 1e-6, "index %d", i)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"relu", ReLUKind},
		{"ReLU", ReLUKind},
		{"softmax", SoftmaxKind},
		{"linear", IdentityKind},
		{"identity", IdentityKind},
		{"", IdentityKind},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseKind("tanh")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "identity", IdentityKind.String())
	assert.Equal(t, "relu", ReLUKind.String())
	assert.Equal(t, "softmax", SoftmaxKind.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
