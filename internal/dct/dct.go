package dct

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// DCT is an orthonormal type-II discrete cosine transform of a fixed length.
// It computes the transform through a real FFT of a reordered sequence, so a
// row of n samples costs O(n log n).
//
// A DCT holds scratch buffers and must not be shared between goroutines.
type DCT struct {
	n       int
	basis   *basis
	fft     *fourier.FFT
	seq     []float64
	coeff   []complex128
	scratch []float64
}

func New(n int) *DCT {
	return newDCT(n, newBasis(n))
}

func newDCT(n int, b *basis) *DCT {
	d := &DCT{n: n, basis: b}
	if n > 1 {
		d.fft = fourier.NewFFT(n)
		d.seq = make([]float64, n)
		d.coeff = make([]complex128, n/2+1)
		d.scratch = make([]float64, n)
	}
	return d
}

func (d *DCT) Len() int { return d.n }

// Transform replaces data with its DCT-II coefficients.
func (d *DCT) Transform(data []float64) {
	n := d.n
	if n == 1 {
		return
	}
	// even samples ascending, odd samples descending
	for i := 0; 2*i < n; i++ {
		d.seq[i] = data[2*i]
	}
	for i := 0; 2*i+1 < n; i++ {
		d.seq[n-1-i] = data[2*i+1]
	}
	d.fft.Coefficients(d.coeff, d.seq)

	tw := d.basis.twiddle
	for k := 0; k <= n/2; k++ {
		v := tw[k] * d.coeff[k]
		data[k] = real(v) * d.basis.scale(k)
		if k > 0 && k < n-k {
			// X[n-k] = -Im(W_k V_k)
			data[n-k] = -imag(v) * d.basis.scale(n-k)
		}
	}
}

// Inverse replaces data, a set of DCT-II coefficients, with the samples
// they were computed from (orthonormal DCT-III).
func (d *DCT) Inverse(data []float64) {
	n := d.n
	if n == 1 {
		return
	}
	c := d.scratch
	for k := range n {
		c[k] = data[k] / d.basis.scale(k)
	}
	tw := d.basis.twiddle
	for k := 0; k <= n/2; k++ {
		var ck, cnk float64
		ck = c[k]
		if k > 0 {
			cnk = c[n-k]
		}
		d.coeff[k] = cmplx.Conj(tw[k]) * complex(ck, -cnk)
	}
	d.fft.Sequence(d.seq, d.coeff)
	inv := 1 / float64(n)
	for i := 0; 2*i < n; i++ {
		data[2*i] = d.seq[i] * inv
	}
	for i := 0; 2*i+1 < n; i++ {
		data[2*i+1] = d.seq[n-1-i] * inv
	}
}

type basis struct {
	n       int
	twiddle []complex128 // exp(-i*pi*k/2n), k = 0..n/2
	s0, sk  float64
}

func newBasis(n int) *basis {
	b := &basis{
		n:       n,
		twiddle: make([]complex128, n/2+1),
		s0:      math.Sqrt(1 / float64(n)),
		sk:      math.Sqrt(2 / float64(n)),
	}
	for k := range b.twiddle {
		b.twiddle[k] = cmplx.Exp(complex(0, -math.Pi*float64(k)/(2*float64(n))))
	}
	return b
}

func (b *basis) scale(k int) float64 {
	if k == 0 {
		return b.s0
	}
	return b.sk
}

// Plan2D applies the separable 2D transform to matrices of one shape.
type Plan2D struct {
	rows, cols int
	row, col   *DCT
}

func NewPlan2D(rows, cols int) *Plan2D {
	return newPlan2D(rows, cols, nil)
}

func newPlan2D(rows, cols int, c *Cache) *Plan2D {
	p := &Plan2D{rows: rows, cols: cols}
	if c == nil {
		p.row, p.col = New(cols), New(rows)
	} else {
		p.row, p.col = c.New(cols), c.New(rows)
	}
	return p
}

// Exec transforms m out of place and returns the coefficients together with
// a function that applies the inverse transform to them. Changes made to the
// coefficients before calling idct are carried into its result.
func (p *Plan2D) Exec(m mat.Matrix) (coef *mat.Dense, idct func() *mat.Dense) {
	coef = mat.DenseCopyOf(m)
	p.apply(coef, p.row.Transform, p.col.Transform)
	idct = func() *mat.Dense {
		out := mat.DenseCopyOf(coef)
		p.apply(out, p.row.Inverse, p.col.Inverse)
		return out
	}
	return coef, idct
}

// apply runs rowFn over every row of m, then colFn over every row of the
// transpose, and writes the transpose back.
func (p *Plan2D) apply(m *mat.Dense, rowFn, colFn func([]float64)) {
	for i := range p.rows {
		rowFn(m.RawRowView(i))
	}
	t := mat.DenseCopyOf(m.T())
	for j := range p.cols {
		colFn(t.RawRowView(j))
	}
	m.Copy(t.T())
}
