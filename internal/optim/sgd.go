package optim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DefaultLR is the learning rate used when SGDConfig.LR is zero.
const DefaultLR = 0.01

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Velocities are tracked per parameter matrix, so one SGD value can serve
// several parameters of the same layer.
type SGD struct {
	lr         float64
	momentum   float64
	velocities map[*mat.Dense]*mat.Dense
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = DefaultLR
	}

	return &SGD{
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*mat.Dense]*mat.Dense),
	}
}

// Step performs a single update of param in place.
//
// Panics if param and grad differ in shape; callers validate shapes when
// the gradient is produced.
func (s *SGD) Step(param *mat.Dense, grad mat.Matrix) {
	pr, pc := param.Dims()
	gr, gc := grad.Dims()
	if pr != gr || pc != gc {
		panic(fmt.Sprintf("SGD.Step: gradient shape (%d, %d) does not match parameter (%d, %d)", gr, gc, pr, pc))
	}

	if s.momentum == 0 {
		var scaled mat.Dense
		scaled.Scale(s.lr, grad)
		param.Sub(param, &scaled)
		return
	}

	velocity, ok := s.velocities[param]
	if !ok {
		velocity = mat.NewDense(pr, pc, nil)
		s.velocities[param] = velocity
	}
	velocity.Scale(s.momentum, velocity)
	velocity.Add(velocity, grad)

	var scaled mat.Dense
	scaled.Scale(s.lr, velocity)
	param.Sub(param, &scaled)
}

// LR returns the learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// Momentum returns the momentum factor.
func (s *SGD) Momentum() float64 {
	return s.momentum
}

// Reset drops all momentum buffers.
func (s *SGD) Reset() {
	s.velocities = make(map[*mat.Dense]*mat.Dense)
}
