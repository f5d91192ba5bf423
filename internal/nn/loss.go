package nn

import (
	"fmt"
	"math"
)

// Loss returns the base-2 cross-entropy -Σ t_i·log2(p_i) between a target
// distribution and a prediction.
//
// Probabilities are not clamped: a zero probability where the target is
// positive yields +Inf. Terms whose target is exactly zero are skipped, so
// 0·log2(0) contributes nothing instead of NaN.
func Loss(target, predicted []float64) (float64, error) {
	if len(target) != len(predicted) {
		return 0, fmt.Errorf("%w: target has %d values, prediction %d", ErrLengthMismatch, len(target), len(predicted))
	}

	var loss float64
	for i, t := range target {
		if t == 0 {
			continue
		}
		loss -= t * math.Log2(predicted[i])
	}
	return loss, nil
}

// OneHot encodes label as a vector of width zeros with a single one.
func OneHot(label, width int) ([]float64, error) {
	if label < 0 || label >= width {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidLabel, label, width)
	}
	v := make([]float64, width)
	v[label] = 1
	return v, nil
}

// Accuracy returns the fraction of positions where predicted equals actual.
func Accuracy(predicted, actual []int) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(predicted), len(actual))
	}
	if len(predicted) == 0 {
		return 0, fmt.Errorf("%w: no predictions to score", ErrEmpty)
	}

	correct := 0
	for i, p := range predicted {
		if p == actual[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(predicted)), nil
}
