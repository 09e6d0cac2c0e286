package watermark

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/yyyoichi/artshield/internal/dct"
	"github.com/yyyoichi/artshield/internal/dwt"
	"github.com/yyyoichi/artshield/internal/noise"
	"github.com/yyyoichi/artshield/tensor"
)

const center = 128.0

// Channel embeds seeded noise into the DCT coefficients of one channel.
//
// Process:
//  1. Subtracts 128 from every value.
//  2. Applies the orthonormal 2D DCT-II, rows first and then columns.
//  3. Adds strength * N(0, 2) noise drawn from a generator seeded with seed.
//  4. Applies the inverse transform and adds 128 back.
//  5. Clips to [0, 255] and truncates to uint8.
//
// ch is not modified. dctCache may be nil.
func Channel(ch mat.Matrix, strength float64, seed int64, dctCache *dct.Cache) *tensor.Tensor {
	rows, cols := ch.Dims()

	centered := mat.NewDense(rows, cols, nil)
	centered.Apply(func(_, _ int, v float64) float64 { return v - center }, ch)

	var plan *dct.Plan2D
	if dctCache == nil {
		plan = dct.NewPlan2D(rows, cols)
	} else {
		plan = dctCache.NewPlan2D(rows, cols)
	}
	coef, idct := plan.Exec(centered)

	if strength != 0 {
		coef.Add(coef, scaled(strength, noise.Normal(rows, cols, seed)))
	}

	spatial := idct()
	return quantize(spatial.RawMatrix().Data, rows, cols, center)
}

// WaveletChannel embeds seeded noise into the three detail bands of a
// single-level Haar transform of one channel. ch is not modified.
func WaveletChannel(ch mat.Matrix, strength float64, seed int64) *tensor.Tensor {
	rows, cols := ch.Dims()
	data := make([]float64, rows*cols)
	for i := range rows {
		mat.Row(data[i*cols:(i+1)*cols], i, ch)
	}

	bands := dwt.HaarDWT(data, cols)
	l := len(bands[dwt.CA])
	nz := noise.Normal(3, l, seed)
	for b, band := range bands[dwt.CH:] {
		row := nz.RawRowView(b)
		for i := range band {
			band[i] += strength * row[i]
		}
	}
	return quantize(dwt.HaarIDWT(bands, cols, rows), rows, cols, 0)
}

func scaled(strength float64, m *mat.Dense) *mat.Dense {
	var s mat.Dense
	s.Scale(strength, m)
	return &s
}

// quantize adds offset, clips to [0, 255] and truncates into a rows x cols tensor.
func quantize(data []float64, rows, cols int, offset float64) *tensor.Tensor {
	out := make([]uint8, len(data))
	for i, v := range data {
		out[i] = clip8(v + offset)
	}
	t, _ := tensor.Wrap(out, rows, cols)
	return t
}

func clip8(v float64) uint8 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
