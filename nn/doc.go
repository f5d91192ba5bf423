// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a small fully connected neural network trained by
// per-example stochastic gradient descent.
//
// # Overview
//
// This package contains:
//   - Layers: Flatten, Dense (identity, ReLU or softmax activation)
//   - Network: ordered layer stack with Fit, Predict, Describe, Save and Load
//   - Metrics: Loss, Accuracy, History, Observer
//   - Data: Images (NCHW float32), LoadMNIST, Synthetic
//
// # Basic Usage
//
//	import "github.com/born-ml/xnn/nn"
//
//	func main() {
//	    x, y, err := nn.LoadMNIST("./data", true, 0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    net := nn.NewNetwork()
//	    net.Add(
//	        nn.NewFlatten(nn.FlattenConfig{Normalize: 255}),
//	        nn.NewDense(nn.DenseConfig{In: 784, Out: 100, Activation: nn.ReLU}),
//	        nn.NewDense(nn.DenseConfig{In: 100, Out: 10, Activation: nn.Softmax}),
//	    )
//
//	    history, err := net.Fit(x, y, nn.FitConfig{Epochs: 5, ValidationSplit: 0.1})
//	}
//
// # Training
//
// Fit visits the training examples in order, one forward pass, backward
// pass and weight update per example. The trailing ValidationSplit fraction
// is held out without shuffling and predicted after every epoch. Progress is
// reported through an Observer; the library itself never prints.
//
// # Gradients
//
// Dense layers default to the exact vector-Jacobian product of their
// activation. GradientReLU reproduces the legacy rule that applies the ReLU
// derivative to every hidden layer regardless of its activation.
//
// # Checkpoints
//
// Save and Load use the .xnn format: a fixed header with a SHA-256
// checksum, a JSON description of the layers and little-endian float64
// tensors.
package nn
