package noise

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sigma is the standard deviation of every perturbation sample.
const Sigma = 2.0

// Normal draws a rows x cols matrix of N(0, Sigma) samples in row-major order.
// Each call owns a generator built from seed, so equal seeds give equal
// matrices whatever else runs concurrently.
func Normal(rows, cols int, seed int64) *mat.Dense {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: Sigma,
		Src:   rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15),
	}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(rows, cols, data)
}
