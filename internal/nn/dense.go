package nn

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/born-ml/xnn/internal/activation"
	"github.com/born-ml/xnn/internal/optim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// GradientMode selects how an interior Dense layer turns the signal from
// the layer above into the gradient of its own pre-activation.
type GradientMode int

const (
	// GradientExact applies the derivative of the layer's own activation.
	GradientExact GradientMode = iota

	// GradientReLU always applies the ReLU derivative, whatever the
	// activation. Identical to GradientExact for ReLU layers.
	GradientReLU
)

// String returns the lowercase name of the mode.
func (m GradientMode) String() string {
	switch m {
	case GradientExact:
		return "exact"
	case GradientReLU:
		return "relu"
	default:
		return fmt.Sprintf("GradientMode(%d)", int(m))
	}
}

// ParseGradientMode converts a name produced by String back into a mode.
func ParseGradientMode(name string) (GradientMode, error) {
	switch strings.ToLower(name) {
	case "exact", "":
		return GradientExact, nil
	case "relu":
		return GradientReLU, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownGradientMode, name)
	}
}

// DenseConfig holds configuration for a Dense layer.
type DenseConfig struct {
	In, Out    int             // Input and output widths (required)
	Activation activation.Kind // Activation (default: identity)
	LR         float64         // Learning rate (default: 0.01)
	Name       string          // Layer name (default: "Dense")
	Gradient   GradientMode    // Interior gradient rule (default: GradientExact)
	TrainBias  bool            // Also update the bias (default: false)
	Momentum   float64         // SGD momentum (default: 0)
	Source     rand.Source     // Initialization source (default: global generator)
}

// Dense implements a fully connected layer.
//
// Performs the transformation:
//
//	net = x·W + b
//	out = act(net)
//
// where x is 1 × In, W is In × Out and b is 1 × Out. Weights and bias are
// drawn from U[-0.25, 0.25].
type Dense struct {
	name      string
	in, out   int
	kind      activation.Kind
	mode      GradientMode
	trainBias bool

	weights *mat.Dense // In × Out
	bias    *mat.Dense // 1 × Out
	opt     *optim.SGD

	input  *mat.Dense
	net    *mat.Dense
	output *mat.Dense

	// Pending gradients, cleared by Update.
	grad     *mat.Dense
	biasGrad *mat.Dense
}

// NewDense creates a new Dense layer.
//
// Panics if either width is not positive.
func NewDense(cfg DenseConfig) *Dense {
	if cfg.In <= 0 || cfg.Out <= 0 {
		panic(fmt.Sprintf("nn.NewDense: widths must be positive, got in=%d out=%d", cfg.In, cfg.Out))
	}
	if cfg.Name == "" {
		cfg.Name = "Dense"
	}

	return &Dense{
		name:      cfg.Name,
		in:        cfg.In,
		out:       cfg.Out,
		kind:      cfg.Activation,
		mode:      cfg.Gradient,
		trainBias: cfg.TrainBias,
		weights:   Uniform(cfg.In, cfg.Out, InitBound, cfg.Source),
		bias:      Uniform(1, cfg.Out, InitBound, cfg.Source),
		opt:       optim.NewSGD(optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum}),
	}
}

// Name returns the layer name.
func (d *Dense) Name() string { return d.name }

// In returns the input width.
func (d *Dense) In() int { return d.in }

// Out returns the output width.
func (d *Dense) Out() int { return d.out }

// Activation returns the activation kind.
func (d *Dense) Activation() activation.Kind { return d.kind }

// GradientMode returns the interior gradient rule.
func (d *Dense) GradientMode() GradientMode { return d.mode }

// LearningRate returns the SGD learning rate.
func (d *Dense) LearningRate() float64 { return d.opt.LR() }

// Momentum returns the SGD momentum factor.
func (d *Dense) Momentum() float64 { return d.opt.Momentum() }

// TrainsBias reports whether Update also moves the bias.
func (d *Dense) TrainsBias() bool { return d.trainBias }

// Weights returns a copy of the In × Out weight matrix.
func (d *Dense) Weights() *mat.Dense { return mat.DenseCopyOf(d.weights) }

// Bias returns a copy of the 1 × Out bias row.
func (d *Dense) Bias() *mat.Dense { return mat.DenseCopyOf(d.bias) }

// SetWeights replaces the weights with a copy of w.
func (d *Dense) SetWeights(w mat.Matrix) error {
	if r, c := w.Dims(); r != d.in || c != d.out {
		return fmt.Errorf("%w: %s weights (%d, %d), want (%d, %d)", ErrShapeMismatch, d.name, r, c, d.in, d.out)
	}
	d.weights.Copy(w)
	return nil
}

// SetBias replaces the bias with a copy of b.
func (d *Dense) SetBias(b mat.Matrix) error {
	if r, c := b.Dims(); r != 1 || c != d.out {
		return fmt.Errorf("%w: %s bias (%d, %d), want (1, %d)", ErrShapeMismatch, d.name, r, c, d.out)
	}
	d.bias.Copy(b)
	return nil
}

// Net returns the last pre-activation, or nil before Compute.
func (d *Dense) Net() *mat.Dense { return copyOrNil(d.net) }

// Output returns the last output, or nil before Compute.
func (d *Dense) Output() *mat.Dense { return copyOrNil(d.output) }

// Gradient returns the pending weight gradient, or nil when none is pending.
func (d *Dense) Gradient() *mat.Dense { return copyOrNil(d.grad) }

// Compute runs the forward pass on a 1 × In row.
func (d *Dense) Compute(input *mat.Dense) (*mat.Dense, error) {
	net, out, err := d.forward(input)
	if err != nil {
		return nil, err
	}
	d.input = mat.DenseCopyOf(input)
	d.net = net
	d.output = out
	return out, nil
}

func (d *Dense) infer(input *mat.Dense) (*mat.Dense, error) {
	_, out, err := d.forward(input)
	return out, err
}

func (d *Dense) forward(input *mat.Dense) (net, out *mat.Dense, err error) {
	if isEmpty(input) {
		return nil, nil, fmt.Errorf("%w: %s received no input", ErrEmpty, d.name)
	}
	if r, c := input.Dims(); r != 1 || c != d.in {
		return nil, nil, fmt.Errorf("%w: %s input (%d, %d), want (1, %d)", ErrShapeMismatch, d.name, r, c, d.in)
	}

	net = mat.NewDense(1, d.out, nil)
	net.Mul(input, d.weights)
	net.Add(net, d.bias)

	out = mat.NewDense(1, d.out, activation.Apply(d.kind, net.RawRowView(0)))
	return net, out, nil
}

// Backprop computes the weight gradient from signal and returns the signal
// for the layer below.
//
// For the last layer (next == nil) signal is taken as the gradient of the
// pre-activation, which holds for softmax paired with cross-entropy where
// the caller passes prediction - target. The gradient is inputᵀ·signal and
// signal is returned unchanged.
//
// For an interior layer next must be a Dense. The signal is carried through
// its weights (g = signal·W_nextᵀ) and through this layer's activation
// derivative according to the gradient mode, giving dnet. The gradient is
// inputᵀ·dnet and dnet is returned.
func (d *Dense) Backprop(signal *mat.Dense, next Layer) (*mat.Dense, error) {
	if d.input == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotComputed, d.name)
	}
	if isEmpty(signal) {
		return nil, fmt.Errorf("%w: %s received no signal", ErrEmpty, d.name)
	}

	var dnet *mat.Dense
	switch n := next.(type) {
	case nil:
		if r, c := signal.Dims(); r != 1 || c != d.out {
			return nil, fmt.Errorf("%w: %s signal (%d, %d), want (1, %d)", ErrShapeMismatch, d.name, r, c, d.out)
		}
		dnet = signal

	case *Dense:
		if n.in != d.out {
			return nil, fmt.Errorf("%w: %s outputs %d, %s expects %d", ErrShapeMismatch, d.name, d.out, n.name, n.in)
		}
		if r, c := signal.Dims(); r != 1 || c != n.out {
			return nil, fmt.Errorf("%w: %s signal (%d, %d), want (1, %d)", ErrShapeMismatch, d.name, r, c, n.out)
		}

		g := mat.NewDense(1, d.out, nil)
		g.Mul(signal, n.weights.T())
		dnet = mat.NewDense(1, d.out, d.activationGrad(g.RawRowView(0)))

	default:
		return nil, fmt.Errorf("%w: %s is followed by %s", ErrNoDownstreamWeights, d.name, next.Name())
	}

	d.grad = mat.NewDense(d.in, d.out, nil)
	d.grad.Mul(d.input.T(), dnet)
	if d.trainBias {
		d.biasGrad = mat.DenseCopyOf(dnet)
	}
	return dnet, nil
}

// activationGrad maps the gradient of the output to the gradient of the
// pre-activation.
func (d *Dense) activationGrad(g []float64) []float64 {
	net := d.net.RawRowView(0)
	if d.mode == GradientReLU {
		d := activation.ReLUDerivative(net)
		floats.Mul(d, g)
		return d
	}
	return activation.Backward(d.kind, net, d.output.RawRowView(0), g)
}

// Update applies W -= lr·ΔW and consumes the pending gradient. Without a
// pending gradient it does nothing.
func (d *Dense) Update() {
	if d.grad == nil {
		return
	}
	d.opt.Step(d.weights, d.grad)
	if d.trainBias && d.biasGrad != nil {
		d.opt.Step(d.bias, d.biasGrad)
	}
	d.grad = nil
	d.biasGrad = nil
}

func copyOrNil(m *mat.Dense) *mat.Dense {
	if m == nil {
		return nil
	}
	return mat.DenseCopyOf(m)
}
