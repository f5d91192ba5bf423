// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/xnn/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPublicWorkflow tests build, train, predict and checkpoint through the
// public API.
func TestPublicWorkflow(t *testing.T) {
	x, y, err := nn.Synthetic(60, 10, 4, 5, rand.NewPCG(3, 3))
	require.NoError(t, err)

	src := rand.NewPCG(7, 7)
	net := nn.NewNetwork(nn.WithParallel(nn.ParallelConfig{Enabled: true, NumWorkers: 2, MinChunkSize: 1}))
	net.Add(
		nn.NewFlatten(nn.FlattenConfig{Normalize: 255}),
		nn.NewDense(nn.DenseConfig{In: 40, Out: 8, Activation: nn.ReLU, LR: 0.05, Source: src}),
		nn.NewDense(nn.DenseConfig{In: 8, Out: 5, Activation: nn.Softmax, LR: 0.05, Source: src}),
	)

	metrics, err := net.Fit(x, y, nn.FitConfig{Epochs: 2, ValidationSplit: 0.25})
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.True(t, metrics[1].Validated)
	assert.Len(t, net.Prediction(), 15)

	var buf bytes.Buffer
	require.NoError(t, net.Encode(&buf))
	loaded, err := nn.Decode(&buf)
	require.NoError(t, err)

	want, err := net.Predict(x)
	require.NoError(t, err)
	got, err := loaded.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	var table bytes.Buffer
	require.NoError(t, nn.WriteSummary(&table, loaded.Describe()))
	assert.Contains(t, table.String(), "Flatten")
}

// TestPublicErrors tests that facade errors match the internal sentinels.
func TestPublicErrors(t *testing.T) {
	_, err := nn.Accuracy([]int{1}, []int{1, 2})
	require.ErrorIs(t, err, nn.ErrLengthMismatch)

	_, err = nn.ParseActivation("tanh")
	require.ErrorIs(t, err, nn.ErrUnknownActivation)

	kind, err := nn.ParseActivation("softmax")
	require.NoError(t, err)
	assert.Equal(t, nn.Softmax, kind)

	_, err = nn.NewNetwork().Predict(&nn.Images{})
	require.ErrorIs(t, err, nn.ErrEmpty)
}
