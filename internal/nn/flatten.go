package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FlattenConfig holds configuration for a Flatten layer.
type FlattenConfig struct {
	Name      string  // Layer name (default: "Flatten")
	Normalize float64 // Every value is divided by this (default: 1)
}

// Flatten converts a rows × cols sample into a single 1 × (rows*cols) row,
// dividing every value by the normalization scalar.
//
// It has no parameters; Backprop passes the signal through and Update does
// nothing.
type Flatten struct {
	name      string
	normalize float64
	input     *mat.Dense
	output    *mat.Dense
}

// NewFlatten creates a new Flatten layer.
func NewFlatten(cfg FlattenConfig) *Flatten {
	if cfg.Name == "" {
		cfg.Name = "Flatten"
	}
	if cfg.Normalize == 0 {
		cfg.Normalize = 1
	}
	return &Flatten{name: cfg.Name, normalize: cfg.Normalize}
}

// Name returns the layer name.
func (f *Flatten) Name() string { return f.name }

// Normalize returns the normalization scalar.
func (f *Flatten) Normalize() float64 { return f.normalize }

// Compute normalizes and flattens input.
func (f *Flatten) Compute(input *mat.Dense) (*mat.Dense, error) {
	out, err := f.infer(input)
	if err != nil {
		return nil, err
	}
	f.input = input
	f.output = out
	return out, nil
}

func (f *Flatten) infer(input *mat.Dense) (*mat.Dense, error) {
	if isEmpty(input) {
		return nil, fmt.Errorf("%w: %s received no input", ErrEmpty, f.name)
	}

	r, c := input.Dims()
	data := make([]float64, 0, r*c)
	for i := range r {
		for _, v := range input.RawRowView(i) {
			data = append(data, v/f.normalize)
		}
	}
	return mat.NewDense(1, r*c, data), nil
}

// Backprop returns signal unchanged.
func (f *Flatten) Backprop(signal *mat.Dense, _ Layer) (*mat.Dense, error) {
	return signal, nil
}

// Update does nothing.
func (f *Flatten) Update() {}

// Output returns the last computed output, or nil before Compute.
func (f *Flatten) Output() *mat.Dense {
	if f.output == nil {
		return nil
	}
	return mat.DenseCopyOf(f.output)
}

// Input returns the last input passed to Compute, or nil.
func (f *Flatten) Input() *mat.Dense {
	if f.input == nil {
		return nil
	}
	return mat.DenseCopyOf(f.input)
}
