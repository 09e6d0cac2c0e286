package artshield

import (
	"errors"

	"github.com/yyyoichi/artshield/internal/codec"
	"github.com/yyyoichi/artshield/internal/watermark"
)

// Error kinds. Apart from context cancellation, every error returned by this
// package wraps exactly one of them; use errors.Is to branch on the kind.
var (
	// ErrNotFound reports that the source path does not exist.
	ErrNotFound = codec.ErrNotFound
	// ErrUnsupportedFormat reports a file that is not a decodable image, or an
	// output format no encoder is registered for.
	ErrUnsupportedFormat = codec.ErrUnsupportedFormat
	// ErrIOFailure wraps any other decode, encode or file system error.
	ErrIOFailure = codec.ErrIO
	// ErrInvalidInput reports a value that cannot be turned into an image or
	// tensor, or an invalid parameter.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedChannelLayout reports a tensor whose channel count is
	// neither 1 nor at least 3.
	ErrUnsupportedChannelLayout = watermark.ErrUnsupportedChannelLayout
	// ErrInvalidState reports an export requested before anything was protected.
	ErrInvalidState = errors.New("invalid state")
)
