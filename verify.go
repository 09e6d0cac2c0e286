package artshield

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog"

	"github.com/yyyoichi/artshield/internal/dct"
	"github.com/yyyoichi/artshield/internal/watermark"
	"github.com/yyyoichi/artshield/internal/yuv"
	"github.com/yyyoichi/artshield/tensor"
)

// DefaultDetectionThreshold is the channel correlation at or above which the
// DCT perturbation counts as present.
const DefaultDetectionThreshold = 0.3

type VerifyOption func(*verifyConfig) error

type verifyConfig struct {
	threshold float64
}

// WithDetectionThreshold overrides DefaultDetectionThreshold. It must be within (0, 1].
func WithDetectionThreshold(threshold float64) VerifyOption {
	return func(c *verifyConfig) error {
		if !(threshold > 0 && threshold <= 1) {
			return fmt.Errorf("%w: threshold must be within (0, 1], got %v", ErrInvalidInput, threshold)
		}
		c.threshold = threshold
		return nil
	}
}

// Report compares a protected image with its original.
type Report struct {
	Width    int             `yaml:"width"`
	Height   int             `yaml:"height"`
	Channels []ChannelReport `yaml:"channels"`
	MSE      float64         `yaml:"mse"`
	PSNR     float64         `yaml:"psnr"`
	LumaPSNR float64         `yaml:"luma_psnr"`
	// Detected is true when every channel correlates with its DCT noise at
	// or above the threshold.
	Detected  bool    `yaml:"detected"`
	Threshold float64 `yaml:"threshold"`
}

type ChannelReport struct {
	Name        string  `yaml:"name"`
	Seed        int64   `yaml:"seed"`
	MeanAbsDiff float64 `yaml:"mean_abs_diff"`
	MSE         float64 `yaml:"mse"`
	PSNR        float64 `yaml:"psnr"`
	Correlation float64 `yaml:"correlation"`
	Strength    float64 `yaml:"strength"`
}

var channelNames = [...]string{"R", "G", "B"}

// Verify re-derives the DCT noise for each channel and measures how much of
// the difference between protected and original it explains. Both tensors
// must be canonical (H, W, 3) with equal shapes, else ErrInvalidInput.
func Verify(ctx context.Context, original, protected *tensor.Tensor, opts ...VerifyOption) (*Report, error) {
	cfg := verifyConfig{threshold: DefaultDetectionThreshold}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if original == nil || protected == nil {
		return nil, fmt.Errorf("%w: nil tensor", ErrInvalidInput)
	}
	if original.Dims() != 3 || original.Channels() != 3 {
		return nil, fmt.Errorf("%w: original shape %v is not (H, W, 3)", ErrInvalidInput, original.Shape())
	}
	if !slices.Equal(original.Shape(), protected.Shape()) {
		return nil, fmt.Errorf("%w: shapes differ: %v and %v", ErrInvalidInput, original.Shape(), protected.Shape())
	}

	r := &Report{
		Width:     original.Width(),
		Height:    original.Height(),
		Channels:  make([]ChannelReport, len(channelNames)),
		Threshold: cfg.threshold,
		Detected:  true,
	}
	cache := dct.NewCache()
	var sse float64
	for c, name := range channelNames {
		d := watermark.Detect(original, protected, c, cache)
		abs, sq := diff(original, protected, c)
		n := float64(r.Width * r.Height)
		r.Channels[c] = ChannelReport{
			Name:        name,
			Seed:        BaseSeed + int64(c),
			MeanAbsDiff: abs / n,
			MSE:         sq / n,
			PSNR:        psnr(sq / n),
			Correlation: d.Correlation,
			Strength:    d.Strength,
		}
		sse += sq
		if d.Correlation < cfg.threshold {
			r.Detected = false
		}
	}
	r.MSE = sse / float64(r.Width*r.Height*len(channelNames))
	r.PSNR = psnr(r.MSE)
	r.LumaPSNR = psnr(mse(yuv.Luma(original), yuv.Luma(protected)))

	zerolog.Ctx(ctx).Debug().Bool("detected", r.Detected).Float64("psnr", r.PSNR).Msg("verified")
	return r, nil
}

// VerifyFiles loads both files and calls Verify.
func VerifyFiles(ctx context.Context, originalPath, protectedPath string, opts ...VerifyOption) (*Report, error) {
	original, err := Load(ctx, originalPath)
	if err != nil {
		return nil, err
	}
	protected, err := Load(ctx, protectedPath)
	if err != nil {
		return nil, err
	}
	return Verify(ctx, original.Tensor(), protected.Tensor(), opts...)
}

func diff(a, b *tensor.Tensor, c int) (abs, sq float64) {
	n := a.Channels()
	ap, bp := a.Pix(), b.Pix()
	for i := c; i < len(ap); i += n {
		d := float64(ap[i]) - float64(bp[i])
		abs += math.Abs(d)
		sq += d * d
	}
	return abs, sq
}

func mse(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum / float64(len(a))
}

// psnr is +Inf for identical inputs.
func psnr(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(255*255/mse)
}
