package watermark

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/yyyoichi/artshield/internal/dct"
	"github.com/yyyoichi/artshield/internal/noise"
	"github.com/yyyoichi/artshield/tensor"
)

type Detection struct {
	// Correlation is the normalized correlation between the residual DCT
	// coefficients and the regenerated noise, in [-1, 1].
	Correlation float64
	// Strength is the least-squares estimate of the applied strength.
	Strength float64
}

// Detect regenerates the noise Channel would have used for channel c and
// measures how much of protected - original it explains.
// Both tensors must have the same (H, W, C>=3) shape.
func Detect(original, protected *tensor.Tensor, c int, dctCache *dct.Cache) Detection {
	rows, cols := original.Height(), original.Width()

	var residual mat.Dense
	residual.Sub(protected.Channel(c), original.Channel(c))

	var plan *dct.Plan2D
	if dctCache == nil {
		plan = dct.NewPlan2D(rows, cols)
	} else {
		plan = dctCache.NewPlan2D(rows, cols)
	}
	coef, _ := plan.Exec(&residual)

	// Truncation shifts the mean, which lands entirely in the DC term.
	r := coef.RawMatrix().Data[1:]
	n := noise.Normal(rows, cols, BaseSeed+int64(c)).RawMatrix().Data[1:]
	if len(r) == 0 {
		return Detection{}
	}

	dot := floats.Dot(r, n)
	nn := floats.Dot(n, n)
	rr := floats.Dot(r, r)

	var d Detection
	if nn > 0 {
		d.Strength = dot / nn
	}
	if denom := math.Sqrt(rr * nn); denom > 0 {
		d.Correlation = dot / denom
	}
	return d
}
