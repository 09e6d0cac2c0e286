package artshield

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yyyoichi/artshield/internal/codec"
	"github.com/yyyoichi/artshield/tensor"
)

type ExportOption func(*exportConfig) error

type exportConfig struct {
	format  string
	quality int
}

// WithFormat forces the output format ("jpeg", "png", "gif", "tiff", "bmp")
// instead of inferring it from the file extension.
func WithFormat(format string) ExportOption {
	return func(c *exportConfig) error {
		c.format = format
		return nil
	}
}

// WithQuality sets the JPEG quality, from 1 to 100.
func WithQuality(quality int) ExportOption {
	return func(c *exportConfig) error {
		if quality < 1 || quality > 100 {
			return fmt.Errorf("%w: quality must be within [1, 100], got %d", ErrInvalidInput, quality)
		}
		c.quality = quality
		return nil
	}
}

// Export encodes t to path. The format comes from WithFormat or the path
// extension.
//
// It fails with ErrInvalidState when t is nil, ErrUnsupportedFormat when no
// encoder matches the format and ErrIOFailure when encoding or writing fails.
func Export(ctx context.Context, t *tensor.Tensor, path string, opts ...ExportOption) error {
	if t == nil {
		return fmt.Errorf("%w: no protected tensor to export", ErrInvalidState)
	}
	var cfg exportConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return err
		}
	}
	format, err := codec.FormatFor(path, cfg.format)
	if err != nil {
		return err
	}
	img, err := FromTensor(t)
	if err != nil {
		return err
	}
	if err := codec.Save(img.Image(), path, format, cfg.quality); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Stringer("format", format).Int("quality", cfg.quality).Msg("image exported")
	return nil
}
