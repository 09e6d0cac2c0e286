// Package tensor provides the pixel tensor exchanged between the loader,
// the watermarking kernels and the exporter.
//
// A Tensor is a row-major array of 8-bit values with shape (height, width)
// or (height, width, channels). The canonical form used across the module is
// (height, width, 3) with channel order R, G, B.
package tensor

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidShape = errors.New("invalid tensor shape")
)

// Number is the set of element types accepted by FromValues.
type Number interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

type Tensor struct {
	shape []int
	pix   []uint8
}

// New allocates a zero-filled tensor. shape must have 2 or 3 positive dimensions.
func New(shape ...int) (*Tensor, error) {
	n, err := volume(shape)
	if err != nil {
		return nil, err
	}
	return &Tensor{shape: append([]int(nil), shape...), pix: make([]uint8, n)}, nil
}

// Wrap builds a tensor on top of pix without copying.
func Wrap(pix []uint8, shape ...int) (*Tensor, error) {
	n, err := volume(shape)
	if err != nil {
		return nil, err
	}
	if n != len(pix) {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrInvalidShape, shape, n, len(pix))
	}
	return &Tensor{shape: append([]int(nil), shape...), pix: pix}, nil
}

// FromValues copies values into a new tensor. Element types other than uint8
// are cast with truncation toward zero and wrap-around, and coerced reports
// that such a cast happened.
func FromValues[T Number](values []T, shape ...int) (t *Tensor, coerced bool, err error) {
	n, err := volume(shape)
	if err != nil {
		return nil, false, err
	}
	if n != len(values) {
		return nil, false, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrInvalidShape, shape, n, len(values))
	}
	t = &Tensor{shape: append([]int(nil), shape...), pix: make([]uint8, n)}
	if u8, ok := any(values).([]uint8); ok {
		copy(t.pix, u8)
		return t, false, nil
	}
	for i, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, true, fmt.Errorf("%w: non-finite value at %d", ErrInvalidShape, i)
		}
		t.pix[i] = uint8(int64(f))
	}
	return t, true, nil
}

func volume(shape []int) (int, error) {
	if len(shape) != 2 && len(shape) != 3 {
		return 0, fmt.Errorf("%w: %d dimensions %v", ErrInvalidShape, len(shape), shape)
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("%w: non-positive dimension in %v", ErrInvalidShape, shape)
		}
		n *= d
	}
	return n, nil
}

// Shape returns a copy of the tensor shape.
func (t *Tensor) Shape() []int { return append([]int(nil), t.shape...) }

func (t *Tensor) Dims() int { return len(t.shape) }

func (t *Tensor) Height() int { return t.shape[0] }

func (t *Tensor) Width() int { return t.shape[1] }

// Channels returns the size of the trailing axis, or 1 for a 2D tensor.
func (t *Tensor) Channels() int {
	if len(t.shape) == 2 {
		return 1
	}
	return t.shape[2]
}

// Pix returns the backing slice in row-major (y, x, c) order.
func (t *Tensor) Pix() []uint8 { return t.pix }

func (t *Tensor) offset(y, x, c int) int {
	return (y*t.shape[1]+x)*t.Channels() + c
}

func (t *Tensor) At(y, x, c int) uint8 { return t.pix[t.offset(y, x, c)] }

func (t *Tensor) Set(y, x, c int, v uint8) { t.pix[t.offset(y, x, c)] = v }

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		shape: append([]int(nil), t.shape...),
		pix:   append([]uint8(nil), t.pix...),
	}
}

// Equal reports whether u has the same shape and values.
func (t *Tensor) Equal(u *Tensor) bool {
	if t == nil || u == nil {
		return t == u
	}
	if len(t.shape) != len(u.shape) {
		return false
	}
	for i := range t.shape {
		if t.shape[i] != u.shape[i] {
			return false
		}
	}
	for i := range t.pix {
		if t.pix[i] != u.pix[i] {
			return false
		}
	}
	return true
}

// Channel copies channel c into a height x width float matrix.
func (t *Tensor) Channel(c int) *mat.Dense {
	h, w, n := t.Height(), t.Width(), t.Channels()
	data := make([]float64, h*w)
	for i := range data {
		data[i] = float64(t.pix[i*n+c])
	}
	return mat.NewDense(h, w, data)
}

// SetChannel writes plane, a height*width row-major slice, into channel c.
func (t *Tensor) SetChannel(c int, plane []uint8) {
	n := t.Channels()
	for i, v := range plane {
		t.pix[i*n+c] = v
	}
}

func (t *Tensor) String() string {
	return fmt.Sprintf("tensor%v", t.shape)
}
