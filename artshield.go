// Package artshield perturbs image pixels in the frequency domain with
// reproducible seeded noise, to discourage automated reuse of the image.
//
// The perturbation of channel i (R=0, G=1, B=2) is keyed by the seed 42+i,
// so the same input and strength always produce the same output.
package artshield

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/yyyoichi/artshield/internal/dct"
	"github.com/yyyoichi/artshield/internal/watermark"
	"github.com/yyyoichi/artshield/tensor"
)

// BaseSeed is the seed of the R channel; G and B use BaseSeed+1 and BaseSeed+2.
const BaseSeed = watermark.BaseSeed

// Secure protects src with the given options.
// This is a convenience function that creates a Protector and calls its Secure method.
func Secure(ctx context.Context, src *tensor.Tensor, opts ...Option) (*tensor.Tensor, error) {
	p, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return p.Secure(ctx, src)
}

// Protector runs the protection techniques in a fixed order:
//  1. DCT perturbation, when the DCT strength is > 0.
//  2. Haar wavelet perturbation, when the DWT strength is > 0.
//
// A Protector is safe for concurrent use.
type Protector struct {
	dctStrength float64
	dwtStrength float64
	dctCache    *dct.Cache
}

// New initializes a Protector. Without options only the DCT technique runs,
// with strength 5.
func New(opts ...Option) (*Protector, error) {
	p := new(Protector)
	if err := p.init(opts...); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Protector) init(opts ...Option) error {
	p.dctStrength = 5
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return err
		}
	}
	p.dctCache = dct.NewCache()
	return nil
}

func (p *Protector) DCTStrength() float64 { return p.dctStrength }

func (p *Protector) DWTStrength() float64 { return p.dwtStrength }

// Secure returns a protected copy of src; src itself is never modified.
// With every strength at zero the copy is returned unchanged.
func (p *Protector) Secure(ctx context.Context, src *tensor.Tensor) (*tensor.Tensor, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil tensor", ErrInvalidInput)
	}
	logger := zerolog.Ctx(ctx)
	dist := src.Clone()
	var err error
	if p.dctStrength > 0 {
		logger.Debug().Float64("strength", p.dctStrength).Msg("applying dct watermark")
		if dist, err = watermark.Watermark(ctx, dist, p.dctStrength, p.dctCache); err != nil {
			return nil, err
		}
	}
	if p.dwtStrength > 0 {
		logger.Debug().Float64("strength", p.dwtStrength).Msg("applying dwt watermark")
		if dist, err = watermark.Wavelet(ctx, dist, p.dwtStrength); err != nil {
			return nil, err
		}
	}
	return dist, nil
}

// Watermark applies the DCT perturbation to every color channel of src and
// returns a new tensor.
//
// 2D and (H, W, 1) inputs are promoted to (H, W, 3). With 4 or more channels
// the ones after the third are copied unchanged. Any other layout fails with
// ErrUnsupportedChannelLayout.
func Watermark(ctx context.Context, src *tensor.Tensor, strength float64) (*tensor.Tensor, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil tensor", ErrInvalidInput)
	}
	if err := validStrength(strength); err != nil {
		return nil, err
	}
	return watermark.Watermark(ctx, src, strength, nil)
}

// WatermarkChannel applies the DCT perturbation keyed by seed to one
// channel and returns a new (rows, cols) tensor. ch is not modified.
func WatermarkChannel(ch mat.Matrix, strength float64, seed int64) (*tensor.Tensor, error) {
	if err := validStrength(strength); err != nil {
		return nil, err
	}
	if r, c := ch.Dims(); r == 0 || c == 0 {
		return nil, fmt.Errorf("%w: empty channel", ErrInvalidInput)
	}
	return watermark.Channel(ch, strength, seed, nil), nil
}
