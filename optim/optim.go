// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the parameter update rules used by xnn layers.
//
// Dense layers create their own SGD from DenseConfig.LR and
// DenseConfig.Momentum. The optimizer is exported for callers that manage
// gonum matrices directly:
//
//	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.01, Momentum: 0.9})
//	sgd.Step(weights, gradient)
package optim

import "github.com/born-ml/xnn/internal/optim"

// Optimizer updates a parameter matrix in place from its gradient.
type Optimizer = optim.Optimizer

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// DefaultLR is the learning rate used when SGDConfig.LR is zero.
const DefaultLR = optim.DefaultLR

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}
