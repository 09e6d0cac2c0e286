package watermark

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/yyyoichi/artshield/internal/dct"
	"github.com/yyyoichi/artshield/tensor"
)

var (
	ErrUnsupportedChannelLayout = errors.New("unsupported channel layout")
)

const (
	// BaseSeed seeds the DCT perturbation of channel i with BaseSeed + i.
	BaseSeed int64 = 42
	// WaveletBaseSeed seeds the wavelet perturbation of channel i with WaveletBaseSeed + i.
	WaveletBaseSeed int64 = 1042

	colorChannels = 3
)

// Watermark applies Channel to the R, G and B channels of src and returns a
// new tensor. src is never modified.
//
// 2D and (H, W, 1) inputs are promoted to (H, W, 3). Channels after the
// third are copied unchanged. Any other layout with fewer than 3 channels
// fails with ErrUnsupportedChannelLayout.
func Watermark(ctx context.Context, src *tensor.Tensor, strength float64, dctCache *dct.Cache) (*tensor.Tensor, error) {
	if dctCache == nil {
		dctCache = dct.NewCache()
	}
	return apply(ctx, src, BaseSeed, func(ch mat.Matrix, seed int64) *tensor.Tensor {
		return Channel(ch, strength, seed, dctCache)
	})
}

// Wavelet applies WaveletChannel to the R, G and B channels of src, with the
// same layout rules as Watermark.
func Wavelet(ctx context.Context, src *tensor.Tensor, strength float64) (*tensor.Tensor, error) {
	return apply(ctx, src, WaveletBaseSeed, func(ch mat.Matrix, seed int64) *tensor.Tensor {
		return WaveletChannel(ch, strength, seed)
	})
}

func apply(ctx context.Context, src *tensor.Tensor, baseSeed int64, fn func(mat.Matrix, int64) *tensor.Tensor) (*tensor.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	work, err := Normalize(ctx, src)
	if err != nil {
		return nil, err
	}
	dist := work.Clone()

	// Channels are independent and each owns its generator, so they can run in parallel.
	var wg sync.WaitGroup
	wg.Add(colorChannels)
	for c := range colorChannels {
		go func(c int) {
			defer wg.Done()
			plane := fn(work.Channel(c), baseSeed+int64(c))
			dist.SetChannel(c, plane.Pix())
		}(c)
	}
	wg.Wait()
	return dist, nil
}

// Normalize returns a private (H, W, C>=3) copy of src.
func Normalize(ctx context.Context, src *tensor.Tensor) (*tensor.Tensor, error) {
	logger := zerolog.Ctx(ctx)
	switch {
	case src.Dims() == 2:
		logger.Warn().Stringer("shape", src).Msg("grayscale input promoted to 3 channels")
		return repeat(src), nil
	case src.Channels() == 1:
		logger.Warn().Stringer("shape", src).Msg("single-channel input promoted to 3 channels")
		return repeat(src), nil
	case src.Channels() < colorChannels:
		return nil, fmt.Errorf("%w: shape %v, want 1 or at least %d channels", ErrUnsupportedChannelLayout, src.Shape(), colorChannels)
	case src.Channels() > colorChannels:
		logger.Warn().Stringer("shape", src).Msg("channels after the third are passed through")
	}
	return src.Clone(), nil
}

// repeat stacks a single channel three times along a trailing axis.
func repeat(src *tensor.Tensor) *tensor.Tensor {
	dist, _ := tensor.New(src.Height(), src.Width(), colorChannels)
	plane := src.Pix()
	for c := range colorChannels {
		dist.SetChannel(c, plane)
	}
	return dist
}
