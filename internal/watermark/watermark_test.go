package watermark

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/yyyoichi/artshield/internal/dct"
	"github.com/yyyoichi/artshield/tensor"
)

// createChannel builds a textured mid-range channel.
func createChannel(rows, cols int) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for y := range rows {
		for x := range cols {
			v := 128 + 60*math.Sin(float64(x)/7) + 25*math.Cos(float64(y)/5) + float64((x*31+y*17)%11)
			m.Set(y, x, math.Floor(v))
		}
	}
	return m
}

func createTensor(t *testing.T, shape ...int) *tensor.Tensor {
	t.Helper()
	tn, err := tensor.New(shape...)
	require.NoError(t, err)
	pix := tn.Pix()
	for i := range pix {
		pix[i] = uint8(40 + (i*37)%170)
	}
	return tn
}

func meanAbsDiff(a mat.Matrix, b *tensor.Tensor) float64 {
	rows, cols := a.Dims()
	var sum float64
	for y := range rows {
		for x := range cols {
			sum += math.Abs(a.At(y, x) - float64(b.At(y, x, 0)))
		}
	}
	return sum / float64(rows*cols)
}

func TestChannel(t *testing.T) {
	ch := createChannel(48, 80)
	orig := mat.DenseCopyOf(ch)

	t.Run("shape and range", func(t *testing.T) {
		got := Channel(ch, 5, 42, nil)
		assert.Equal(t, []int{48, 80}, got.Shape())
		assert.True(t, mat.Equal(orig, ch), "input must not change")
		assert.Greater(t, meanAbsDiff(ch, got), 0.5)
	})

	t.Run("saturated input stays in range", func(t *testing.T) {
		bright := mat.NewDense(16, 16, nil)
		for i := range 16 {
			for j := range 16 {
				bright.Set(i, j, float64(255*((i+j)%2)))
			}
		}
		got := Channel(bright, 50, 1, nil)
		assert.Equal(t, []int{16, 16}, got.Shape())
		var clipped int
		for _, v := range got.Pix() {
			if v == 0 || v == 255 {
				clipped++
			}
		}
		assert.Greater(t, clipped, 0)
	})

	t.Run("deterministic", func(t *testing.T) {
		a := Channel(ch, 7, 123, nil)
		b := Channel(ch, 7, 123, dct.NewCache())
		assert.True(t, a.Equal(b))
	})

	t.Run("seed divergence", func(t *testing.T) {
		a := Channel(ch, 7, 123, nil)
		b := Channel(ch, 7, 456, nil)
		assert.False(t, a.Equal(b))
	})

	t.Run("zero strength", func(t *testing.T) {
		got := Channel(ch, 0, 42, nil)
		for y := range 48 {
			for x := range 80 {
				assert.InDelta(t, ch.At(y, x), float64(got.At(y, x, 0)), 1, "(%d,%d)", y, x)
			}
		}
	})

	t.Run("strength scaling", func(t *testing.T) {
		low := meanAbsDiff(ch, Channel(ch, 1, 42, nil))
		high := meanAbsDiff(ch, Channel(ch, 10, 42, nil))
		assert.Greater(t, high, low*2)
	})

	t.Run("single row", func(t *testing.T) {
		got := Channel(createChannel(1, 9), 3, 42, nil)
		assert.Equal(t, []int{1, 9}, got.Shape())
	})
}

func TestWaveletChannel(t *testing.T) {
	ch := createChannel(33, 21)

	a := WaveletChannel(ch, 4, 1042)
	b := WaveletChannel(ch, 4, 1042)
	assert.True(t, a.Equal(b))
	assert.Equal(t, []int{33, 21}, a.Shape())
	assert.Greater(t, meanAbsDiff(ch, a), 0.5)

	zero := WaveletChannel(ch, 0, 1042)
	for y := range 33 {
		for x := range 21 {
			assert.InDelta(t, ch.At(y, x), float64(zero.At(y, x, 0)), 1)
		}
	}
}

func TestWatermark(t *testing.T) {
	ctx := context.Background()

	t.Run("color", func(t *testing.T) {
		src := createTensor(t, 24, 32, 3)
		orig := src.Clone()

		got, err := Watermark(ctx, src, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{24, 32, 3}, got.Shape())
		assert.True(t, orig.Equal(src), "input must not change")
		assert.NotSame(t, src, got)

		for c := range 3 {
			want := Channel(src.Channel(c), 5, BaseSeed+int64(c), nil)
			for y := range 24 {
				for x := range 32 {
					require.Equal(t, want.At(y, x, 0), got.At(y, x, c), "channel %d (%d,%d)", c, y, x)
				}
			}
		}
	})

	t.Run("grayscale 2d", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := zerolog.New(&buf).WithContext(ctx)

		src, _, err := tensor.FromValues(bytes.Repeat([]byte{100}, 9), 3, 3)
		require.NoError(t, err)

		got, err := Watermark(ctx, src, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 3, 3}, got.Shape())
		assert.Contains(t, buf.String(), "grayscale input promoted to 3 channels")

		for c := range 3 {
			changed := false
			for y := range 3 {
				for x := range 3 {
					if got.At(y, x, c) != 100 {
						changed = true
					}
				}
			}
			assert.True(t, changed, "channel %d", c)
		}
	})

	t.Run("explicit single channel", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := zerolog.New(&buf).WithContext(ctx)

		src, _, err := tensor.FromValues(bytes.Repeat([]byte{100}, 9), 3, 3, 1)
		require.NoError(t, err)

		got, err := Watermark(ctx, src, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 3, 3}, got.Shape())
		assert.Contains(t, buf.String(), "single-channel input promoted to 3 channels")
	})

	t.Run("two channels rejected", func(t *testing.T) {
		_, err := Watermark(ctx, createTensor(t, 10, 10, 2), 5, nil)
		assert.ErrorIs(t, err, ErrUnsupportedChannelLayout)
	})

	t.Run("alpha passed through", func(t *testing.T) {
		src := createTensor(t, 8, 8, 4)
		got, err := Watermark(ctx, src, 5, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{8, 8, 4}, got.Shape())
		for y := range 8 {
			for x := range 8 {
				assert.Equal(t, src.At(y, x, 3), got.At(y, x, 3))
			}
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Watermark(ctx, createTensor(t, 4, 4, 3), 5, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWavelet(t *testing.T) {
	src := createTensor(t, 15, 18, 3)
	got, err := Wavelet(context.Background(), src, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{15, 18, 3}, got.Shape())
	assert.False(t, src.Equal(got))

	_, err = Wavelet(context.Background(), createTensor(t, 4, 4, 2), 3)
	assert.ErrorIs(t, err, ErrUnsupportedChannelLayout)
}

func TestDetect(t *testing.T) {
	ctx := context.Background()
	original := createTensor(t, 40, 56, 3)
	cache := dct.NewCache()

	protected, err := Watermark(ctx, original, 5, cache)
	require.NoError(t, err)

	for c := range 3 {
		d := Detect(original, protected, c, cache)
		assert.Greater(t, d.Correlation, 0.9, "channel %d", c)
		assert.InDelta(t, 5, d.Strength, 1, "channel %d", c)
	}

	t.Run("other technique is not detected", func(t *testing.T) {
		other, err := Wavelet(ctx, original, 5)
		require.NoError(t, err)
		d := Detect(original, other, 0, cache)
		assert.Less(t, math.Abs(d.Correlation), 0.2)
	})

	t.Run("identical", func(t *testing.T) {
		d := Detect(original, original.Clone(), 0, cache)
		assert.Zero(t, d.Correlation)
		assert.Zero(t, d.Strength)
	})
}
