package nn

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/xnn/internal/activation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

func newTestDense(t *testing.T, cfg DenseConfig) *Dense {
	t.Helper()
	if cfg.Source == nil {
		cfg.Source = rand.NewPCG(1, 2)
	}
	return NewDense(cfg)
}

// TestDenseDefaults tests zero-value configuration and initialization range.
func TestDenseDefaults(t *testing.T) {
	d := newTestDense(t, DenseConfig{In: 30, Out: 20})

	assert.Equal(t, "Dense", d.Name())
	assert.Equal(t, 30, d.In())
	assert.Equal(t, 20, d.Out())
	assert.Equal(t, activation.IdentityKind, d.Activation())
	assert.Equal(t, GradientExact, d.GradientMode())
	assert.Equal(t, 0.01, d.LearningRate())
	assert.False(t, d.TrainsBias())
	assert.Nil(t, d.Net())
	assert.Nil(t, d.Output())
	assert.Nil(t, d.Gradient())

	for _, m := range []*mat.Dense{d.Weights(), d.Bias()} {
		r, c := m.Dims()
		for i := range r {
			for j := range c {
				v := m.At(i, j)
				assert.True(t, v >= -InitBound && v <= InitBound, "value %v out of range", v)
			}
		}
	}
}

// TestDenseSeeded tests that the same source yields the same weights.
func TestDenseSeeded(t *testing.T) {
	a := NewDense(DenseConfig{In: 4, Out: 3, Source: rand.NewPCG(7, 7)})
	b := NewDense(DenseConfig{In: 4, Out: 3, Source: rand.NewPCG(7, 7)})
	assert.True(t, mat.Equal(a.Weights(), b.Weights()))
	assert.True(t, mat.Equal(a.Bias(), b.Bias()))
}

// TestNewDensePanics tests the width contract.
func TestNewDensePanics(t *testing.T) {
	assert.Panics(t, func() { NewDense(DenseConfig{In: 0, Out: 3}) })
	assert.Panics(t, func() { NewDense(DenseConfig{In: 3, Out: -1}) })
}

// TestDenseIdentityCompute tests net = x·W + b exactly for an identity layer.
func TestDenseIdentityCompute(t *testing.T) {
	d := newTestDense(t, DenseConfig{In: 2, Out: 2})
	require.NoError(t, d.SetWeights(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	require.NoError(t, d.SetBias(mat.NewDense(1, 2, []float64{0.5, -0.5})))

	out, err := d.Compute(mat.NewDense(1, 2, []float64{1, 1}))
	require.NoError(t, err)
	assert.Equal(t, []float64{4.5, 5.5}, out.RawRowView(0))
	assert.Equal(t, []float64{4.5, 5.5}, d.Net().RawRowView(0))
	assert.True(t, mat.Equal(out, d.Output()))
}

// TestDenseActivations tests ReLU non-negativity and softmax normalization.
func TestDenseActivations(t *testing.T) {
	x := mat.NewDense(1, 5, []float64{3, -1, 0.5, -7, 2})

	relu := newTestDense(t, DenseConfig{In: 5, Out: 8, Activation: activation.ReLUKind})
	out, err := relu.Compute(x)
	require.NoError(t, err)
	for _, v := range out.RawRowView(0) {
		assert.GreaterOrEqual(t, v, 0.0)
	}

	softmax := newTestDense(t, DenseConfig{In: 5, Out: 8, Activation: activation.SoftmaxKind})
	out, err = softmax.Compute(x)
	require.NoError(t, err)
	var sum float64
	for _, v := range out.RawRowView(0) {
		assert.Greater(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

// TestDenseComputeShapeMismatch tests input width validation.
func TestDenseComputeShapeMismatch(t *testing.T) {
	d := newTestDense(t, DenseConfig{In: 3, Out: 2})

	_, err := d.Compute(mat.NewDense(1, 4, nil))
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = d.Compute(mat.NewDense(2, 3, nil))
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = d.Compute(nil)
	require.ErrorIs(t, err, ErrEmpty)
}

// TestDenseSetters tests shape validation of SetWeights and SetBias.
func TestDenseSetters(t *testing.T) {
	d := newTestDense(t, DenseConfig{In: 3, Out: 2})

	require.ErrorIs(t, d.SetWeights(mat.NewDense(2, 3, nil)), ErrShapeMismatch)
	require.ErrorIs(t, d.SetBias(mat.NewDense(1, 3, nil)), ErrShapeMismatch)

	// Accessors return copies.
	w := d.Weights()
	w.Set(0, 0, 100)
	assert.NotEqual(t, 100.0, d.Weights().At(0, 0))
}

// TestDenseTerminalBackprop tests ΔW = xᵀ·signal with the signal returned unchanged.
func TestDenseTerminalBackprop(t *testing.T) {
	d := newTestDense(t, DenseConfig{In: 2, Out: 3, Activation: activation.SoftmaxKind})
	_, err := d.Compute(mat.NewDense(1, 2, []float64{2, -1}))
	require.NoError(t, err)

	signal := mat.NewDense(1, 3, []float64{0.1, -0.3, 0.2})
	got, err := d.Backprop(signal, nil)
	require.NoError(t, err)
	assert.Same(t, signal, got)

	want := mat.NewDense(2, 3, []float64{
		0.2, -0.6, 0.4,
		-0.1, 0.3, -0.2,
	})
	assert.True(t, mat.EqualApprox(want, d.Gradient(), 1e-15))
}

// TestDenseBackpropErrors tests the failure modes of Backprop.
func TestDenseBackpropErrors(t *testing.T) {
	d := newTestDense(t, DenseConfig{In: 2, Out: 2})
	signal := mat.NewDense(1, 2, []float64{1, 1})

	_, err := d.Backprop(signal, nil)
	require.ErrorIs(t, err, ErrNotComputed)

	_, err = d.Compute(mat.NewDense(1, 2, []float64{1, 1}))
	require.NoError(t, err)

	_, err = d.Backprop(signal, NewFlatten(FlattenConfig{}))
	require.ErrorIs(t, err, ErrNoDownstreamWeights)

	_, err = d.Backprop(mat.NewDense(1, 3, nil), nil)
	require.ErrorIs(t, err, ErrShapeMismatch)

	mismatched := newTestDense(t, DenseConfig{In: 5, Out: 2})
	_, err = d.Backprop(signal, mismatched)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

// TestDenseInteriorBackprop tests both gradient modes against hand-computed values.
func TestDenseInteriorBackprop(t *testing.T) {
	next := newTestDense(t, DenseConfig{In: 2, Out: 1})
	require.NoError(t, next.SetWeights(mat.NewDense(2, 1, []float64{2, 3})))
	signal := mat.NewDense(1, 1, []float64{0.5})
	// g = signal·W_nextᵀ = [1, 1.5]

	tests := []struct {
		name     string
		kind     activation.Kind
		mode     GradientMode
		wantDNet []float64
	}{
		// net = [1, -1]
		{"relu exact", activation.ReLUKind, GradientExact, []float64{1, 0}},
		{"relu legacy", activation.ReLUKind, GradientReLU, []float64{1, 0}},
		{"identity exact", activation.IdentityKind, GradientExact, []float64{1, 1.5}},
		{"identity legacy", activation.IdentityKind, GradientReLU, []float64{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDense(t, DenseConfig{In: 1, Out: 2, Activation: tt.kind, Gradient: tt.mode})
			require.NoError(t, d.SetWeights(mat.NewDense(1, 2, []float64{1, -1})))
			require.NoError(t, d.SetBias(mat.NewDense(1, 2, nil)))

			_, err := d.Compute(mat.NewDense(1, 1, []float64{1}))
			require.NoError(t, err)

			dnet, err := d.Backprop(signal, next)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDNet, dnet.RawRowView(0))
			// Input is 1, so ΔW equals dnet.
			assert.Equal(t, tt.wantDNet, d.Gradient().RawRowView(0))
		})
	}
}

// TestDenseUpdate tests W -= lr·ΔW and that the gradient is consumed.
func TestDenseUpdate(t *testing.T) {
	d := newTestDense(t, DenseConfig{In: 2, Out: 1, LR: 0.5})
	require.NoError(t, d.SetWeights(mat.NewDense(2, 1, []float64{1, 1})))
	bias := d.Bias()

	_, err := d.Compute(mat.NewDense(1, 2, []float64{1, 2}))
	require.NoError(t, err)
	_, err = d.Backprop(mat.NewDense(1, 1, []float64{1}), nil)
	require.NoError(t, err)

	d.Update()
	assert.Equal(t, []float64{0.5, 0}, d.Weights().RawMatrix().Data)
	assert.Nil(t, d.Gradient())
	assert.True(t, mat.Equal(bias, d.Bias()), "bias must not move by default")

	d.Update()
	assert.Equal(t, []float64{0.5, 0}, d.Weights().RawMatrix().Data)
}

// TestDenseTrainBias tests the opt-in bias update.
func TestDenseTrainBias(t *testing.T) {
	d := newTestDense(t, DenseConfig{In: 1, Out: 2, LR: 0.1, TrainBias: true})
	require.NoError(t, d.SetBias(mat.NewDense(1, 2, []float64{1, 1})))

	_, err := d.Compute(mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)
	_, err = d.Backprop(mat.NewDense(1, 2, []float64{1, -2}), nil)
	require.NoError(t, err)
	d.Update()

	assert.InDeltaSlice(t, []float64{0.9, 1.2}, d.Bias().RawRowView(0), 1e-15)
}

// TestDenseGradientCheck compares back-propagated weight gradients with
// central differences of the natural-log cross-entropy.
func TestDenseGradientCheck(t *testing.T) {
	for _, kind := range []activation.Kind{activation.IdentityKind, activation.ReLUKind, activation.SoftmaxKind} {
		t.Run(kind.String(), func(t *testing.T) {
			src := rand.NewPCG(3, 4)
			hidden := NewDense(DenseConfig{In: 3, Out: 4, Activation: kind, Source: src})
			head := NewDense(DenseConfig{In: 4, Out: 3, Activation: activation.SoftmaxKind, Source: src})
			net := NewNetwork()
			net.Add(hidden, head)

			x := mat.NewDense(1, 3, []float64{0.9, -1.3, 0.4})
			const label = 1
			target, err := OneHot(label, 3)
			require.NoError(t, err)

			lossAt := func(layer *Dense, base *mat.Dense) func([]float64) float64 {
				return func(w []float64) float64 {
					require.NoError(t, layer.SetWeights(mat.NewDense(base.RawMatrix().Rows, base.RawMatrix().Cols, w)))
					out, err := net.infer(x)
					require.NoError(t, err)
					return -math.Log(out.At(0, label))
				}
			}

			hiddenW, headW := hidden.Weights(), head.Weights()
			settings := &fd.Settings{Formula: fd.Central, Step: 1e-6}
			wantHidden := fd.Gradient(nil, lossAt(hidden, hiddenW), mat.DenseCopyOf(hiddenW).RawMatrix().Data, settings)
			require.NoError(t, hidden.SetWeights(hiddenW))
			wantHead := fd.Gradient(nil, lossAt(head, headW), mat.DenseCopyOf(headW).RawMatrix().Data, settings)
			require.NoError(t, head.SetWeights(headW))

			out, err := net.Forward(x)
			require.NoError(t, err)
			signal := mat.NewDense(1, 3, nil)
			signal.Sub(out, mat.NewDense(1, 3, target))
			require.NoError(t, net.Backward(signal))

			assert.InDeltaSlice(t, wantHidden, hidden.Gradient().RawMatrix().Data, 1e-6)
			assert.InDeltaSlice(t, wantHead, head.Gradient().RawMatrix().Data, 1e-6)
		})
	}
}

// TestGradientModeString tests the mode names and their parsing.
func TestGradientModeString(t *testing.T) {
	for _, m := range []GradientMode{GradientExact, GradientReLU} {
		got, err := ParseGradientMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	assert.Equal(t, "GradientMode(9)", GradientMode(9).String())

	_, err := ParseGradientMode("sideways")
	require.ErrorIs(t, err, ErrUnknownGradientMode)
}
