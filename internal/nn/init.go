package nn

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// InitBound is the half-width of the uniform distribution used for
// initial weights and biases.
const InitBound = 0.25

// Uniform creates a rows × cols matrix with values drawn i.i.d. from
// U[-bound, bound].
//
// A nil src draws from the global math/rand/v2 generator.
func Uniform(rows, cols int, bound float64, src rand.Source) *mat.Dense {
	dist := distuv.Uniform{Min: -bound, Max: bound, Src: src}

	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(rows, cols, data)
}
