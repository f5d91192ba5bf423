// Package nn implements a small feed-forward network trained one example at
// a time with stochastic gradient descent.
//
// A Network is an ordered list of layers. Two layer kinds exist:
//   - Flatten: normalizes a rows × cols sample and reshapes it into one row
//   - Dense: fully connected layer (net = x·W + b) followed by an activation
//
// Training runs forward through the layers in insertion order, back
// propagates the error signal in reverse order and then updates every layer
// in forward order. Layers never store their neighbours; the Network passes
// the next layer to Backprop.
//
// Example:
//
//	net := nn.NewNetwork()
//	net.Add(
//	    nn.NewFlatten(nn.FlattenConfig{Normalize: 255}),
//	    nn.NewDense(nn.DenseConfig{In: 784, Out: 100, Activation: activation.ReLUKind}),
//	    nn.NewDense(nn.DenseConfig{In: 100, Out: 10, Activation: activation.SoftmaxKind}),
//	)
//	history, err := net.Fit(images, labels, nn.FitConfig{Epochs: 5, ValidationSplit: 0.1})
package nn

import "gonum.org/v1/gonum/mat"

// Layer is the uniform contract shared by Flatten and Dense.
//
// The set of layers is closed: the unexported method keeps other packages
// from adding implementations the Network does not know how to drive.
type Layer interface {
	// Name returns the layer name used in summaries and error messages.
	Name() string

	// Compute runs the forward pass and retains the input and output for
	// the following Backprop.
	Compute(input *mat.Dense) (*mat.Dense, error)

	// Backprop consumes the error signal of the layer above and returns the
	// signal for the layer below. next is nil for the last layer.
	Backprop(signal *mat.Dense, next Layer) (*mat.Dense, error)

	// Update applies the gradient computed by the last Backprop.
	Update()

	// infer runs the forward pass without touching layer state, so it may
	// be called concurrently.
	infer(input *mat.Dense) (*mat.Dense, error)
}

func isEmpty(m *mat.Dense) bool {
	return m == nil || m.IsEmpty()
}
