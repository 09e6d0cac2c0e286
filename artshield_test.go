package artshield_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/yyyoichi/artshield"
	"github.com/yyyoichi/artshield/tensor"
)

func gradientTensor(t *testing.T, width, height int) *tensor.Tensor {
	t.Helper()
	img, err := artshield.FromValues(context.Background(), createImage(width, height).Pix, height, width, 4)
	require.NoError(t, err)
	rgba := img.Tensor()

	dist, err := tensor.New(height, width, 3)
	require.NoError(t, err)
	for c := range 3 {
		plane := make([]uint8, width*height)
		for i := range plane {
			plane[i] = rgba.Pix()[i*4+c]
		}
		dist.SetChannel(c, plane)
	}
	return dist
}

func TestNew(t *testing.T) {
	test := []struct {
		name    string
		opts    []artshield.Option
		wantDCT float64
		wantDWT float64
		wantErr bool
	}{
		{name: "default", wantDCT: 5},
		{name: "dct", opts: []artshield.Option{artshield.WithDCTStrength(1.5)}, wantDCT: 1.5},
		{name: "both", opts: []artshield.Option{artshield.WithDCTStrength(0), artshield.WithDWTStrength(3)}, wantDWT: 3},
		{name: "negative dct", opts: []artshield.Option{artshield.WithDCTStrength(-1)}, wantErr: true},
		{name: "negative dwt", opts: []artshield.Option{artshield.WithDWTStrength(-0.1)}, wantErr: true},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			p, err := artshield.New(tt.opts...)
			if tt.wantErr {
				assert.ErrorIs(t, err, artshield.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDCT, p.DCTStrength())
			assert.Equal(t, tt.wantDWT, p.DWTStrength())
		})
	}
}

func TestSecure(t *testing.T) {
	ctx := context.Background()
	src := gradientTensor(t, 64, 40)
	orig := src.Clone()

	t.Run("zero strength is a copy", func(t *testing.T) {
		got, err := artshield.Secure(ctx, src, artshield.WithDCTStrength(0))
		require.NoError(t, err)
		assert.True(t, src.Equal(got))
		assert.NotSame(t, src, got)
		got.Set(0, 0, 0, 7)
		assert.True(t, orig.Equal(src))
	})

	t.Run("dct", func(t *testing.T) {
		got, err := artshield.Secure(ctx, src, artshield.WithDCTStrength(5))
		require.NoError(t, err)
		assert.Equal(t, src.Shape(), got.Shape())
		assert.False(t, src.Equal(got))
		assert.True(t, orig.Equal(src))

		want, err := artshield.Watermark(ctx, src, 5)
		require.NoError(t, err)
		assert.True(t, want.Equal(got))
	})

	t.Run("deterministic", func(t *testing.T) {
		p, err := artshield.New(artshield.WithDCTStrength(5), artshield.WithDWTStrength(2))
		require.NoError(t, err)
		a, err := p.Secure(ctx, src)
		require.NoError(t, err)
		b, err := p.Secure(ctx, src)
		require.NoError(t, err)
		assert.True(t, a.Equal(b))
	})

	t.Run("techniques compose in order", func(t *testing.T) {
		both, err := artshield.Secure(ctx, src, artshield.WithDCTStrength(5), artshield.WithDWTStrength(2))
		require.NoError(t, err)
		dctOnly, err := artshield.Secure(ctx, src, artshield.WithDCTStrength(5))
		require.NoError(t, err)
		assert.False(t, both.Equal(dctOnly))

		want, err := artshield.Secure(ctx, dctOnly, artshield.WithDCTStrength(0), artshield.WithDWTStrength(2))
		require.NoError(t, err)
		assert.True(t, want.Equal(both))
	})

	t.Run("unsupported layout", func(t *testing.T) {
		bad, err := tensor.New(10, 10, 2)
		require.NoError(t, err)
		_, err = artshield.Secure(ctx, bad)
		assert.ErrorIs(t, err, artshield.ErrUnsupportedChannelLayout)
	})

	t.Run("nil", func(t *testing.T) {
		_, err := artshield.Secure(ctx, nil)
		assert.ErrorIs(t, err, artshield.ErrInvalidInput)
	})
}

func TestWatermark(t *testing.T) {
	ctx := context.Background()

	t.Run("grayscale promoted", func(t *testing.T) {
		gray, _, err := tensor.FromValues([]uint8{100, 100, 100, 100, 100, 100, 100, 100, 100}, 3, 3)
		require.NoError(t, err)
		got, err := artshield.Watermark(ctx, gray, 5)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 3, 3}, got.Shape())

		stacked, err := tensor.New(3, 3, 3)
		require.NoError(t, err)
		for i := range stacked.Pix() {
			stacked.Pix()[i] = 100
		}
		assert.False(t, stacked.Equal(got))
		for _, v := range got.Pix() {
			assert.LessOrEqual(t, v, uint8(255))
		}
	})

	t.Run("negative strength", func(t *testing.T) {
		_, err := artshield.Watermark(ctx, gradientTensor(t, 4, 4), -1)
		assert.ErrorIs(t, err, artshield.ErrInvalidInput)
	})
}

func TestWatermarkChannel(t *testing.T) {
	src := gradientTensor(t, 32, 24)
	ch := src.Channel(0)

	a, err := artshield.WatermarkChannel(ch, 7, 123)
	require.NoError(t, err)
	b, err := artshield.WatermarkChannel(ch, 7, 123)
	require.NoError(t, err)
	c, err := artshield.WatermarkChannel(ch, 7, 456)
	require.NoError(t, err)

	assert.Equal(t, []int{24, 32}, a.Shape())
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, mat.Equal(src.Channel(0), ch))

	_, err = artshield.WatermarkChannel(ch, -2, 1)
	assert.ErrorIs(t, err, artshield.ErrInvalidInput)
}

func TestEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("full-size image")
	}
	ctx := context.Background()
	path := writeJPEG(t, t.TempDir(), "cs50.jpg", 2048, 1366)

	img, err := artshield.Load(ctx, path)
	require.NoError(t, err)
	original := img.Tensor()

	protected, err := artshield.Secure(ctx, original, artshield.WithDCTStrength(5.0))
	require.NoError(t, err)
	assert.Equal(t, []int{1366, 2048, 3}, protected.Shape())
	assert.True(t, img.Tensor().Equal(original))

	for c := range 3 {
		assert.False(t, mat.Equal(original.Channel(c), protected.Channel(c)), "channel %d", c)
	}
}
