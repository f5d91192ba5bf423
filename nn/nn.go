// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"io"
	"math/rand/v2"

	"github.com/born-ml/xnn/internal/activation"
	"github.com/born-ml/xnn/internal/dataset"
	"github.com/born-ml/xnn/internal/nn"
	"github.com/born-ml/xnn/internal/parallel"
)

// Network is an ordered stack of layers trained one example at a time.
type Network = nn.Network

// Option configures a Network.
type Option = nn.Option

// NewNetwork creates an empty network.
func NewNetwork(opts ...Option) *Network {
	return nn.NewNetwork(opts...)
}

// ParallelConfig controls parallel inference.
type ParallelConfig = parallel.Config

// DefaultParallelConfig returns a config using every CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// WithParallel runs Predict across workers according to cfg.
func WithParallel(cfg ParallelConfig) Option {
	return nn.WithParallel(cfg)
}

// Load reads a network saved with Network.Save.
func Load(path string, opts ...Option) (*Network, error) {
	return nn.Load(path, opts...)
}

// Decode reads a network written with Network.Encode.
func Decode(r io.Reader, opts ...Option) (*Network, error) {
	return nn.Decode(r, opts...)
}

// Layers

// Layer is a stage of a Network. It is implemented only by Flatten and Dense.
type Layer = nn.Layer

// Flatten reshapes a single-channel image into a row vector and scales it.
type Flatten = nn.Flatten

// FlattenConfig holds configuration for Flatten.
type FlattenConfig = nn.FlattenConfig

// NewFlatten creates a Flatten layer.
//
// Example:
//
//	flat := nn.NewFlatten(nn.FlattenConfig{Normalize: 255})
func NewFlatten(cfg FlattenConfig) *Flatten {
	return nn.NewFlatten(cfg)
}

// Dense is a fully connected layer.
type Dense = nn.Dense

// DenseConfig holds configuration for Dense.
type DenseConfig = nn.DenseConfig

// NewDense creates a Dense layer with weights and bias drawn from
// U[-0.25, 0.25]. It panics if either width is not positive.
//
// Example:
//
//	hidden := nn.NewDense(nn.DenseConfig{In: 784, Out: 100, Activation: nn.ReLU, LR: 0.01})
func NewDense(cfg DenseConfig) *Dense {
	return nn.NewDense(cfg)
}

// GradientMode selects how a hidden Dense layer differentiates its activation.
type GradientMode = nn.GradientMode

// Gradient modes.
const (
	GradientExact = nn.GradientExact
	GradientReLU  = nn.GradientReLU
)

// Activation selects the activation applied by a Dense layer.
type Activation = activation.Kind

// Activations.
const (
	Identity = activation.IdentityKind
	ReLU     = activation.ReLUKind
	Softmax  = activation.SoftmaxKind
)

// ParseActivation converts "identity", "relu" or "softmax" into an Activation.
func ParseActivation(name string) (Activation, error) {
	return activation.ParseKind(name)
}

// Training

// FitConfig holds configuration for Network.Fit.
type FitConfig = nn.FitConfig

// Observer receives training progress from Network.Fit.
type Observer = nn.Observer

// TrainingInfo describes a Fit run before its first epoch.
type TrainingInfo = nn.TrainingInfo

// EpochMetrics summarizes one training epoch.
type EpochMetrics = nn.EpochMetrics

// History accumulates epoch metrics across Fit calls.
type History = nn.History

// LayerSummary is one row of Network.Describe.
type LayerSummary = nn.LayerSummary

// WriteSummary renders the rows returned by Network.Describe as a table.
func WriteSummary(w io.Writer, summaries []LayerSummary) error {
	return nn.WriteSummary(w, summaries)
}

// Loss returns the cross-entropy of predicted against a one-hot target.
func Loss(target, predicted []float64) (float64, error) {
	return nn.Loss(target, predicted)
}

// Accuracy returns the fraction of equal labels.
func Accuracy(predicted, actual []int) (float64, error) {
	return nn.Accuracy(predicted, actual)
}

// Data

// Images is a batch of float32 images in NCHW layout.
type Images = dataset.Images

// NewImages wraps data as n images of c×h×w.
func NewImages(n, c, h, w int, data []float32) (*Images, error) {
	return dataset.NewImages(n, c, h, w, data)
}

// LoadMNIST reads the MNIST training or test set from dir. maxSamples <= 0
// loads everything.
func LoadMNIST(dir string, train bool, maxSamples int) (*Images, []int, error) {
	return dataset.LoadMNIST(dir, train, maxSamples)
}

// Synthetic generates n separable images of rows×cols with labels in
// [0, classes).
func Synthetic(n, rows, cols, classes int, src rand.Source) (*Images, []int, error) {
	return dataset.Synthetic(n, rows, cols, classes, src)
}

// Errors returned by this package.
var (
	ErrShapeMismatch       = nn.ErrShapeMismatch
	ErrLengthMismatch      = nn.ErrLengthMismatch
	ErrEmpty               = nn.ErrEmpty
	ErrNotComputed         = nn.ErrNotComputed
	ErrNoDownstreamWeights = nn.ErrNoDownstreamWeights
	ErrInvalidLabel        = nn.ErrInvalidLabel
	ErrInvalidSplit        = nn.ErrInvalidSplit
	ErrUnknownLayer        = nn.ErrUnknownLayer
	ErrUnknownGradientMode = nn.ErrUnknownGradientMode
	ErrUnknownActivation   = activation.ErrUnknownKind
)
