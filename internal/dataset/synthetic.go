package dataset

import (
	"fmt"
	"math/rand/v2"
)

// Synthetic generates a labeled single-channel dataset that a small dense
// network can learn, for running the pipeline without MNIST files.
//
// Class k lights a horizontal band of rows starting at k*rows/classes with
// bright pixels (200-255); every other pixel carries low noise (0-30).
// Labels cycle through the classes so any contiguous tail split contains
// every class.
func Synthetic(n, rows, cols, classes int, src rand.Source) (*Images, []int, error) {
	if classes <= 0 || classes > rows {
		return nil, nil, fmt.Errorf("%w: %d classes for %d rows", ErrShape, classes, rows)
	}
	if src == nil {
		src = rand.NewPCG(1, 2)
	}
	rng := rand.New(src)

	band := max(rows/classes, 1)
	data := make([]float32, n*rows*cols)
	labels := make([]int, n)

	for i := range n {
		label := i % classes
		labels[i] = label
		img := data[i*rows*cols : (i+1)*rows*cols]
		for r := range rows {
			lit := r >= label*band && r < (label+1)*band
			for c := range cols {
				if lit {
					img[r*cols+c] = float32(200 + rng.IntN(56))
				} else {
					img[r*cols+c] = float32(rng.IntN(31))
				}
			}
		}
	}

	images, err := NewImages(n, 1, rows, cols, data)
	if err != nil {
		return nil, nil, err
	}
	return images, labels, nil
}
