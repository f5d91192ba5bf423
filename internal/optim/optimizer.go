// Package optim implements the parameter update rules used by xnn layers.
//
// Layers own their parameters and gradients; an optimizer only knows how to
// move a parameter matrix against a gradient of the same shape:
//
//	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.01})
//	sgd.Step(weights, gradient) // weights -= 0.01 * gradient
package optim

import "gonum.org/v1/gonum/mat"

// Optimizer updates a parameter in place from its gradient.
type Optimizer interface {
	// Step applies one update to param using grad. Both must have the same
	// dimensions.
	Step(param *mat.Dense, grad mat.Matrix)

	// LR returns the current learning rate.
	LR() float64
}
