package nn

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/born-ml/xnn/internal/activation"
	"github.com/born-ml/xnn/internal/serialization"
	"gonum.org/v1/gonum/mat"
)

const modelType = "Network"

// Save writes the architecture, weights and biases of the network to path.
//
// The training history is included when every recorded value is finite.
// Optimizer momentum is not saved.
func (n *Network) Save(path string) error {
	header, tensors := n.checkpoint()
	if err := serialization.WriteFile(path, header, tensors); err != nil {
		return fmt.Errorf("failed to save network: %w", err)
	}
	return nil
}

// Encode writes the checkpoint to w.
func (n *Network) Encode(w io.Writer) error {
	header, tensors := n.checkpoint()
	return serialization.Write(w, header, tensors)
}

func (n *Network) checkpoint() (serialization.Header, map[string]*mat.Dense) {
	header := serialization.Header{
		ModelType: modelType,
		Layers:    make([]serialization.LayerMeta, 0, len(n.layers)),
	}
	tensors := make(map[string]*mat.Dense)

	for i, layer := range n.layers {
		switch l := layer.(type) {
		case *Flatten:
			header.Layers = append(header.Layers, serialization.LayerMeta{
				Kind:      serialization.KindFlatten,
				Name:      l.name,
				Normalize: l.normalize,
			})
		case *Dense:
			meta := serialization.LayerMeta{
				Kind:         serialization.KindDense,
				Name:         l.name,
				In:           l.in,
				Out:          l.out,
				Activation:   l.kind.String(),
				LearningRate: l.opt.LR(),
				Momentum:     l.opt.Momentum(),
				TrainBias:    l.trainBias,
				Gradient:     l.mode.String(),
				WeightName:   fmt.Sprintf("layers.%d.weight", i),
				BiasName:     fmt.Sprintf("layers.%d.bias", i),
			}
			tensors[meta.WeightName] = l.weights
			tensors[meta.BiasName] = l.bias
			header.Layers = append(header.Layers, meta)
		}
	}

	if history, ok := historyMeta(n.history); ok {
		header.History = history
	}
	return header, tensors
}

func historyMeta(h History) ([]serialization.EpochMeta, bool) {
	out := make([]serialization.EpochMeta, len(h.Epochs))
	for i, e := range h.Epochs {
		if math.IsInf(e.Loss, 0) || math.IsNaN(e.Loss) {
			return nil, false
		}
		out[i] = serialization.EpochMeta{
			Epoch:     e.Epoch,
			TrainSize: e.TrainSize,
			Loss:      e.Loss,
			Accuracy:  e.Accuracy,
			Validated: e.Validated,
			Seconds:   e.Duration.Seconds(),
		}
	}
	return out, true
}

// Load reads a network saved by Save. opts apply to the returned network.
func Load(path string, opts ...Option) (*Network, error) {
	header, tensors, err := serialization.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}
	return fromCheckpoint(header, tensors, opts)
}

// Decode reads a checkpoint written by Encode.
func Decode(r io.Reader, opts ...Option) (*Network, error) {
	header, tensors, err := serialization.Read(r)
	if err != nil {
		return nil, err
	}
	return fromCheckpoint(header, tensors, opts)
}

func fromCheckpoint(header serialization.Header, tensors map[string]*mat.Dense, opts []Option) (*Network, error) {
	if header.ModelType != modelType {
		return nil, fmt.Errorf("%w: model type %q", ErrUnknownLayer, header.ModelType)
	}

	n := NewNetwork(opts...)
	for i, meta := range header.Layers {
		switch meta.Kind {
		case serialization.KindFlatten:
			n.Add(NewFlatten(FlattenConfig{Name: meta.Name, Normalize: meta.Normalize}))

		case serialization.KindDense:
			d, err := denseFromMeta(meta, tensors)
			if err != nil {
				return nil, fmt.Errorf("layer %d (%s): %w", i, meta.Name, err)
			}
			n.Add(d)

		default:
			return nil, fmt.Errorf("%w: layer %d has kind %q", ErrUnknownLayer, i, meta.Kind)
		}
	}

	for _, e := range header.History {
		n.history.Epochs = append(n.history.Epochs, EpochMetrics{
			Epoch:     e.Epoch,
			Loss:      e.Loss,
			Accuracy:  e.Accuracy,
			Validated: e.Validated,
			Duration:  secondsToDuration(e.Seconds),
			TrainSize: e.TrainSize,
		})
	}
	return n, nil
}

func denseFromMeta(meta serialization.LayerMeta, tensors map[string]*mat.Dense) (*Dense, error) {
	if meta.In <= 0 || meta.Out <= 0 {
		return nil, fmt.Errorf("%w: widths (%d, %d)", ErrShapeMismatch, meta.In, meta.Out)
	}
	kind, err := activation.ParseKind(meta.Activation)
	if err != nil {
		return nil, err
	}
	mode, err := ParseGradientMode(meta.Gradient)
	if err != nil {
		return nil, err
	}

	w, err := serialization.Tensor(tensors, meta.WeightName)
	if err != nil {
		return nil, err
	}
	b, err := serialization.Tensor(tensors, meta.BiasName)
	if err != nil {
		return nil, err
	}

	d := NewDense(DenseConfig{
		In:         meta.In,
		Out:        meta.Out,
		Activation: kind,
		LR:         meta.LearningRate,
		Name:       meta.Name,
		Gradient:   mode,
		TrainBias:  meta.TrainBias,
		Momentum:   meta.Momentum,
	})
	if err := d.SetWeights(w); err != nil {
		return nil, err
	}
	if err := d.SetBias(b); err != nil {
		return nil, err
	}
	return d, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
