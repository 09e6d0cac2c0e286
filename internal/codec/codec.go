// Package codec decodes raster files into images normalized to 8-bit RGB and
// encodes images back to files.
package codec

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	// Register decoders beyond the ones imaging pulls in (jpeg, png, gif, bmp, tiff).
	_ "golang.org/x/image/webp"
)

var (
	ErrNotFound          = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrIO                = errors.New("image i/o failure")
)

// Decoded is the result of Open.
type Decoded struct {
	Image  *image.NRGBA // opaque, origin at (0, 0)
	Format string      // registered format name, e.g. "jpeg", "webp"
	Mode   string      // color mode before normalization
}

// Open decodes the file at path and converts it to opaque RGB.
func Open(path string) (*Decoded, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrIO, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	src, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	return &Decoded{
		Image:  ToRGB(src),
		Format: format,
		Mode:   Mode(src),
	}, nil
}

// Mode names the color layout of img the way image tooling usually does.
func Mode(img image.Image) string {
	switch m := img.(type) {
	case *image.Gray:
		return "L"
	case *image.Gray16:
		return "I;16"
	case *image.Paletted:
		return "P"
	case *image.CMYK:
		return "CMYK"
	case *image.YCbCr:
		return "RGB"
	case *image.NYCbCrA:
		return "RGBA"
	case *image.RGBA:
		if m.Opaque() {
			return "RGB"
		}
		return "RGBA"
	case *image.NRGBA:
		if m.Opaque() {
			return "RGB"
		}
		return "RGBA"
	case *image.RGBA64:
		if m.Opaque() {
			return "RGB"
		}
		return "RGBA"
	case *image.NRGBA64:
		if m.Opaque() {
			return "RGB"
		}
		return "RGBA"
	}
	return "RGB"
}

// ToRGB copies img into an NRGBA image anchored at the origin with alpha
// forced to 255. Alpha is dropped, not composited.
func ToRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// FormatFor resolves the output format from an explicit name, or from the
// extension of path when name is empty.
func FormatFor(path, name string) (imaging.Format, error) {
	if name == "" {
		name = filepath.Ext(path)
	}
	f, err := imaging.FormatFromExtension(strings.TrimPrefix(strings.ToLower(name), "."))
	if err != nil {
		return -1, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return f, nil
}

// Save encodes img to path. quality applies to JPEG output and is ignored
// when zero.
func Save(img image.Image, path string, format imaging.Format, quality int) (err error) {
	var opts []imaging.EncodeOption
	if quality > 0 {
		opts = append(opts, imaging.JPEGQuality(quality))
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %s: %w", ErrIO, path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := imaging.Encode(out, img, format, opts...); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	return nil
}
