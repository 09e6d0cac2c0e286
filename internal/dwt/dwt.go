package dwt

import (
	"math"
)

// Band indexes the slices returned by HaarDWT.
const (
	CA = iota // approximation
	CH        // horizontal detail
	CV        // vertical detail
	CD        // diagonal detail
)

// HaarDWT computes a single-level 2D Haar transform of the row-major data of
// width w. Each band is ceil(w/2) x ceil(h/2); an odd trailing row or column
// is paired with itself.
func HaarDWT(data []float64, w int) [][]float64 {
	h := len(data) / w

	hw, hh := (w+1)/2, (h+1)/2
	l := hw * hh
	cA := make([]float64, l)
	cH := make([]float64, l)
	cV := make([]float64, l)
	cD := make([]float64, l)

	for y0 := 0; y0 < h; y0 += 2 {
		var y1 int
		if y0+1 < h {
			y1 = y0 + 1
		} else {
			y1 = y0
		}
		for x0 := 0; x0 < w; x0 += 2 {
			var x1 int
			if x0+1 < w {
				x1 = x0 + 1
			} else {
				x1 = x0
			}
			a1, d1 := cacd(data[y0*w+x0], data[y1*w+x0])
			a2, d2 := cacd(data[y0*w+x1], data[y1*w+x1])

			idx := (y0/2)*hw + (x0 / 2)
			cA[idx], cV[idx] = cacd(a1, a2)
			cH[idx], cD[idx] = cacd(d1, d2)
		}
	}

	return [][]float64{cA, cH, cV, cD}
}

// HaarIDWT rebuilds the w x h row-major data from the bands of HaarDWT.
func HaarIDWT(bands [][]float64, w, h int) []float64 {
	data := make([]float64, w*h)
	var (
		cA = bands[CA]
		cH = bands[CH]
		cV = bands[CV]
		cD = bands[CD]
	)
	hw := (w + 1) / 2
	for y0 := 0; y0 < h; y0 += 2 {
		for x0 := 0; x0 < w; x0 += 2 {
			idx := (y0/2)*hw + (x0 / 2)

			a1, a2 := icacd(cA[idx], cV[idx])
			d1, d2 := icacd(cH[idx], cD[idx])

			v1, v2 := icacd(a1, d1)
			v3, v4 := icacd(a2, d2)

			data[y0*w+x0] = v1
			if y0+1 < h {
				data[(y0+1)*w+x0] = v2
			}
			if x0+1 < w {
				data[y0*w+(x0+1)] = v3
			}
			if y0+1 < h && x0+1 < w {
				data[(y0+1)*w+(x0+1)] = v4
			}
		}
	}
	return data
}

func cacd(v1, v2 float64) (float64, float64) {
	avr := (v1 + v2) / 2.0
	return avr * math.Sqrt2, (v1 - avr) * math.Sqrt2
}

func icacd(a, d float64) (float64, float64) {
	avr := a / math.Sqrt2
	return avr + d/math.Sqrt2, avr - d/math.Sqrt2
}
