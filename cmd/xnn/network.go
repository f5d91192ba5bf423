package main

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/born-ml/xnn/internal/activation"
	"github.com/born-ml/xnn/internal/nn"
)

// architecture describes a Flatten followed by ReLU hidden layers and a
// softmax head.
type architecture struct {
	inputs    int
	hidden    []int
	classes   int
	normalize float64
	lr        float64
	momentum  float64
	gradient  nn.GradientMode
	trainBias bool
	src       rand.Source
}

// parseHidden parses a comma separated list of hidden layer widths.
func parseHidden(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	widths := make([]int, len(parts))
	for i, p := range parts {
		w, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid hidden width %q: %w", p, err)
		}
		if w <= 0 {
			return nil, fmt.Errorf("hidden width must be positive, got %d", w)
		}
		widths[i] = w
	}
	return widths, nil
}

func buildNetwork(a architecture, opts ...nn.Option) *nn.Network {
	net := nn.NewNetwork(opts...)
	net.Add(nn.NewFlatten(nn.FlattenConfig{Normalize: a.normalize}))

	in := a.inputs
	for _, width := range a.hidden {
		net.Add(a.dense(in, width, activation.ReLUKind))
		in = width
	}
	net.Add(a.dense(in, a.classes, activation.SoftmaxKind))
	return net
}

func (a architecture) dense(in, out int, kind activation.Kind) *nn.Dense {
	return nn.NewDense(nn.DenseConfig{
		In:         in,
		Out:        out,
		Activation: kind,
		LR:         a.lr,
		Gradient:   a.gradient,
		TrainBias:  a.trainBias,
		Momentum:   a.momentum,
		Source:     a.src,
	})
}
