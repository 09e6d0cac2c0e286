package artshield

import (
	"context"

	"github.com/yyyoichi/artshield/tensor"
)

// Session ties one source file to its protected result.
type Session struct {
	source    *Image
	original  *tensor.Tensor
	protected *tensor.Tensor
}

// Open loads path and prepares its canonical tensor.
func Open(ctx context.Context, path string) (*Session, error) {
	img, err := Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Session{source: img, original: img.Tensor()}, nil
}

func (s *Session) Source() *Image { return s.source }

// Original returns a copy of the source tensor.
func (s *Session) Original() *tensor.Tensor { return s.original.Clone() }

// Protected returns the result of the last Secure call, or nil.
func (s *Session) Protected() *tensor.Tensor { return s.protected }

// Secure protects the source tensor and keeps the result for Export.
func (s *Session) Secure(ctx context.Context, opts ...Option) (*tensor.Tensor, error) {
	t, err := Secure(ctx, s.original, opts...)
	if err != nil {
		return nil, err
	}
	s.protected = t
	return t, nil
}

// Export writes the protected tensor to path. It fails with ErrInvalidState
// before Secure has succeeded.
func (s *Session) Export(ctx context.Context, path string, opts ...ExportOption) error {
	return Export(ctx, s.protected, path, opts...)
}
