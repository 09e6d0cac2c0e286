package artshield

import (
	"fmt"
	"math"
)

type Option func(*Protector) error

// WithDCTStrength sets the strength of the DCT perturbation. Zero disables
// it. Larger values are more robust and more visible; 5 is a typical value.
func WithDCTStrength(strength float64) Option {
	return func(p *Protector) error {
		if err := validStrength(strength); err != nil {
			return err
		}
		p.dctStrength = strength
		return nil
	}
}

// WithDWTStrength sets the strength of the wavelet perturbation applied after
// the DCT one. Zero, the default, disables it.
func WithDWTStrength(strength float64) Option {
	return func(p *Protector) error {
		if err := validStrength(strength); err != nil {
			return err
		}
		p.dwtStrength = strength
		return nil
	}
}

func validStrength(s float64) error {
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
		return fmt.Errorf("%w: strength must be a finite value >= 0, got %v", ErrInvalidInput, s)
	}
	return nil
}
