package artshield

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/yyyoichi/artshield/internal/codec"
	"github.com/yyyoichi/artshield/tensor"
)

// Image is a decoded raster image. It is immutable after construction.
type Image struct {
	img        image.Image
	path       string
	format     string
	mode       string
	sourceMode string
}

// Load opens the raster file at path and normalizes it to 3-channel RGB.
// Alpha is dropped, not composited.
//
// It fails with ErrNotFound when path does not exist, ErrUnsupportedFormat
// when the file is not a decodable image and ErrIOFailure otherwise.
func Load(ctx context.Context, path string) (*Image, error) {
	d, err := codec.Open(path)
	if err != nil {
		return nil, err
	}
	b := d.Image.Bounds()
	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Str("format", d.Format).
		Str("mode", d.Mode).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Msg("image loaded")
	if d.Mode != "RGB" {
		zerolog.Ctx(ctx).Debug().Str("from", d.Mode).Msg("converted image to RGB")
	}
	return &Image{
		img:        d.Image,
		path:       path,
		format:     d.Format,
		mode:       "RGB",
		sourceMode: d.Mode,
	}, nil
}

// Path is the file the image was loaded from; empty for images built from tensors.
func (i *Image) Path() string { return i.path }

// Format is the codec name the file was decoded with, e.g. "jpeg" or "webp".
func (i *Image) Format() string { return i.format }

// Mode is "RGB" for loaded images, and "L", "RGB" or "RGBA" for images built
// from tensors.
func (i *Image) Mode() string { return i.mode }

// SourceMode is the color mode of the file before normalization.
func (i *Image) SourceMode() string { return i.sourceMode }

func (i *Image) Width() int { return i.img.Bounds().Dx() }

func (i *Image) Height() int { return i.img.Bounds().Dy() }

// Image returns the underlying image. Callers must not modify it.
func (i *Image) Image() image.Image { return i.img }

// Tensor returns a new (H, W, 3) tensor for RGB images, (H, W) for "L" and
// (H, W, 4) for "RGBA".
func (i *Image) Tensor() *tensor.Tensor {
	h, w := i.Height(), i.Width()
	if g, ok := i.img.(*image.Gray); ok {
		t, _ := tensor.New(h, w)
		for y := range h {
			copy(t.Pix()[y*w:(y+1)*w], g.Pix[y*g.Stride:y*g.Stride+w])
		}
		return t
	}

	img, ok := i.img.(*image.NRGBA)
	if !ok {
		img = codec.ToRGB(i.img)
	}
	channels := 3
	if i.mode == "RGBA" {
		channels = 4
	}
	t, _ := tensor.New(h, w, channels)
	pix := t.Pix()
	for y := range h {
		row := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for x := range w {
			o := (y*w + x) * channels
			copy(pix[o:o+channels], row[4*x:4*x+channels])
		}
	}
	return t
}

// FromTensor builds an image from t. The mode follows the trailing axis:
// 2D gives "L", 3 channels give "RGB" and 4 give "RGBA". Any other shape
// fails with ErrInvalidInput.
func FromTensor(t *tensor.Tensor) (*Image, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tensor", ErrInvalidInput)
	}
	h, w := t.Height(), t.Width()
	rect := image.Rect(0, 0, w, h)
	switch {
	case t.Dims() == 2:
		img := image.NewGray(rect)
		copy(img.Pix, t.Pix())
		return &Image{img: img, mode: "L", sourceMode: "L"}, nil
	case t.Channels() == 3 || t.Channels() == 4:
		n := t.Channels()
		img := image.NewNRGBA(rect)
		src := t.Pix()
		for i := range h * w {
			copy(img.Pix[4*i:4*i+n], src[n*i:n*i+n])
			if n == 3 {
				img.Pix[4*i+3] = 0xff
			}
		}
		mode := "RGB"
		if n == 4 {
			mode = "RGBA"
		}
		return &Image{img: img, mode: mode, sourceMode: mode}, nil
	}
	return nil, fmt.Errorf("%w: cannot build an image from shape %v", ErrInvalidInput, t.Shape())
}

// FromValues builds an image from a row-major array of any numeric type.
// Values that are not uint8 are cast with truncation and a warning is
// logged. Malformed shapes fail with ErrInvalidInput.
func FromValues[T tensor.Number](ctx context.Context, values []T, shape ...int) (*Image, error) {
	t, coerced, err := tensor.FromValues(values, shape...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if coerced {
		zerolog.Ctx(ctx).Warn().Ints("shape", shape).Str("dtype", fmt.Sprintf("%T", values)).Msg("values cast to uint8")
	}
	return FromTensor(t)
}
