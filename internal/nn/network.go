package nn

import (
	"errors"
	"fmt"
	"time"

	"github.com/born-ml/xnn/internal/dataset"
	"github.com/born-ml/xnn/internal/parallel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Network is an ordered stack of layers trained one example at a time.
//
// Insertion order is the forward order. Adjacent widths must agree; a
// mismatch surfaces as ErrShapeMismatch from the first pass that hits it.
type Network struct {
	layers     []Layer
	parallel   parallel.Config
	history    History
	prediction []int
}

// Option configures a Network.
type Option func(*Network)

// WithParallel runs Predict across workers according to cfg.
//
// The parallel path never touches layer buffers, so the per-layer outputs
// seen after a parallel Predict are those of the last sequential pass.
func WithParallel(cfg parallel.Config) Option {
	return func(n *Network) {
		n.parallel = cfg
	}
}

// NewNetwork creates an empty network.
func NewNetwork(opts ...Option) *Network {
	n := &Network{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Add appends layers in forward order.
func (n *Network) Add(layers ...Layer) {
	n.layers = append(n.layers, layers...)
}

// Layers returns the layers in forward order.
func (n *Network) Layers() []Layer {
	out := make([]Layer, len(n.layers))
	copy(out, n.layers)
	return out
}

// Len returns the number of layers.
func (n *Network) Len() int {
	return len(n.layers)
}

// History returns the metrics of every epoch trained so far.
func (n *Network) History() History {
	return History{Epochs: append([]EpochMetrics(nil), n.history.Epochs...)}
}

// Prediction returns the labels produced by the last Predict call, or nil.
func (n *Network) Prediction() []int {
	if n.prediction == nil {
		return nil
	}
	return append([]int(nil), n.prediction...)
}

// Forward runs sample through every layer and returns the final output.
func (n *Network) Forward(sample *mat.Dense) (*mat.Dense, error) {
	if len(n.layers) == 0 {
		return nil, fmt.Errorf("%w: network has no layers", ErrEmpty)
	}

	out := sample
	for i, layer := range n.layers {
		var err error
		out, err = layer.Compute(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, layer.Name(), err)
		}
	}
	return out, nil
}

// Backward propagates signal from the last layer to the first.
func (n *Network) Backward(signal *mat.Dense) error {
	for i := len(n.layers) - 1; i >= 0; i-- {
		var next Layer
		if i+1 < len(n.layers) {
			next = n.layers[i+1]
		}

		var err error
		signal, err = n.layers[i].Backprop(signal, next)
		if err != nil {
			return fmt.Errorf("layer %d (%s): %w", i, n.layers[i].Name(), err)
		}
	}
	return nil
}

// Update applies pending gradients in forward order.
func (n *Network) Update() {
	for _, layer := range n.layers {
		layer.Update()
	}
}

// TrainExample performs one SGD step on a single example and returns its
// loss before the step.
//
// The error signal handed to the last layer is output - target.
func (n *Network) TrainExample(sample *mat.Dense, target []float64) (float64, error) {
	out, err := n.Forward(sample)
	if err != nil {
		return 0, err
	}

	pred := out.RawRowView(0)
	if len(pred) != len(target) {
		return 0, fmt.Errorf("%w: network outputs %d values, target has %d", ErrShapeMismatch, len(pred), len(target))
	}
	loss, err := Loss(target, pred)
	if err != nil {
		return 0, err
	}

	diff := make([]float64, len(pred))
	floats.SubTo(diff, pred, target)
	if err := n.Backward(mat.NewDense(1, len(diff), diff)); err != nil {
		return 0, err
	}
	n.Update()
	return loss, nil
}

// FitConfig holds configuration for Network.Fit.
type FitConfig struct {
	Epochs          int      // Passes over the training data (default: 1)
	ValidationSplit float64  // Trailing fraction held out for validation, in [0, 1) (default: 0)
	Classes         int      // One-hot width (default: largest training label + 1)
	Observer        Observer // Progress receiver (default: none)
}

// Fit trains the network on x and y.
//
// The trailing ValidationSplit fraction of the samples is held out without
// shuffling. Each epoch visits the training examples in order, performing
// forward pass, backward pass and update per example, then predicts the
// held-out part when one exists. Metrics of every epoch are appended to the
// network's History and returned. The first error aborts the run.
func (n *Network) Fit(x *dataset.Images, y []int, cfg FitConfig) ([]EpochMetrics, error) {
	if len(n.layers) == 0 {
		return nil, fmt.Errorf("%w: network has no layers", ErrEmpty)
	}
	if x.Len() != len(y) {
		return nil, fmt.Errorf("%w: %d samples, %d labels", ErrLengthMismatch, x.Len(), len(y))
	}
	if x.Len() == 0 {
		return nil, fmt.Errorf("%w: no training examples", ErrEmpty)
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = 1
	}
	obs := cfg.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	train, val, err := dataset.SplitTail(x, y, cfg.ValidationSplit)
	if err != nil {
		if errors.Is(err, dataset.ErrInvalidSplit) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSplit, err)
		}
		return nil, err
	}
	validate := cfg.ValidationSplit > 0
	if train.Images.Len() == 0 {
		return nil, fmt.Errorf("%w: no training examples", ErrEmpty)
	}
	if validate && val.Images.Len() == 0 {
		return nil, fmt.Errorf("%w: validation split %v leaves no validation examples", ErrEmpty, cfg.ValidationSplit)
	}

	width, err := n.oneHotWidth(train.Labels, cfg.Classes)
	if err != nil {
		return nil, err
	}

	obs.TrainingStarted(TrainingInfo{
		Epochs:         cfg.Epochs,
		TrainSize:      train.Images.Len(),
		ValidationSize: val.Images.Len(),
	})

	start := time.Now()
	metrics := make([]EpochMetrics, 0, cfg.Epochs)
	for e := range cfg.Epochs {
		m, err := n.runEpoch(e, cfg.Epochs, train, val, validate, width, obs)
		if err != nil {
			return metrics, fmt.Errorf("epoch %d: %w", e, err)
		}
		metrics = append(metrics, m)
		n.history.Epochs = append(n.history.Epochs, m)
		obs.EpochFinished(m)
	}
	obs.TrainingFinished(time.Since(start))

	return metrics, nil
}

func (n *Network) runEpoch(e, epochs int, train, val dataset.Split, validate bool, width int, obs Observer) (EpochMetrics, error) {
	obs.EpochStarted(e, epochs)
	start := time.Now()
	size := train.Images.Len()

	var total float64
	for i := range size {
		target, err := OneHot(train.Labels[i], width)
		if err != nil {
			return EpochMetrics{}, err
		}
		loss, err := n.TrainExample(train.Images.Sample(i), target)
		if err != nil {
			return EpochMetrics{}, fmt.Errorf("example %d: %w", i, err)
		}
		total += loss
		obs.ExampleDone(i, size)
	}

	m := EpochMetrics{Epoch: e, Loss: total / float64(size), TrainSize: size}
	if validate {
		obs.Validating()
		pred, err := n.Predict(val.Images)
		if err != nil {
			return EpochMetrics{}, fmt.Errorf("validation: %w", err)
		}
		if m.Accuracy, err = Accuracy(pred, val.Labels); err != nil {
			return EpochMetrics{}, fmt.Errorf("validation: %w", err)
		}
		m.Validated = true
	}
	m.Duration = time.Since(start)
	return m, nil
}

// oneHotWidth derives the one-hot width from the training labels and
// checks it against the output width of a trailing Dense layer.
func (n *Network) oneHotWidth(labels []int, classes int) (int, error) {
	maxLabel := -1
	for i, l := range labels {
		if l < 0 {
			return 0, fmt.Errorf("%w: label %d at index %d", ErrInvalidLabel, l, i)
		}
		maxLabel = max(maxLabel, l)
	}

	width := maxLabel + 1
	if classes > 0 {
		if maxLabel >= classes {
			return 0, fmt.Errorf("%w: label %d with %d classes", ErrInvalidLabel, maxLabel, classes)
		}
		width = classes
	}

	if last, ok := n.layers[len(n.layers)-1].(*Dense); ok && last.out != width {
		return 0, fmt.Errorf("%w: %d classes, %s outputs %d", ErrShapeMismatch, width, last.name, last.out)
	}
	return width, nil
}

// Predict runs every sample of x forward and returns the index of the
// largest output for each, taking the first on ties. The result is retained
// and available from Prediction.
func (n *Network) Predict(x *dataset.Images) ([]int, error) {
	if len(n.layers) == 0 {
		return nil, fmt.Errorf("%w: network has no layers", ErrEmpty)
	}

	size := x.Len()
	pred := make([]int, size)

	var err error
	if n.parallel.Enabled {
		err = parallel.ForErr(size, func(i int) error {
			out, err := n.infer(x.Sample(i))
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			pred[i] = floats.MaxIdx(out.RawRowView(0))
			return nil
		}, n.parallel)
	} else {
		for i := range size {
			var out *mat.Dense
			if out, err = n.Forward(x.Sample(i)); err != nil {
				err = fmt.Errorf("sample %d: %w", i, err)
				break
			}
			pred[i] = floats.MaxIdx(out.RawRowView(0))
		}
	}
	if err != nil {
		return nil, err
	}

	n.prediction = pred
	return append([]int(nil), pred...), nil
}

// infer is Forward without side effects on layer state.
func (n *Network) infer(sample *mat.Dense) (*mat.Dense, error) {
	out := sample
	for i, layer := range n.layers {
		var err error
		out, err = layer.infer(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, layer.Name(), err)
		}
	}
	return out, nil
}
