// Package fingerprint holds the fixed-pattern signature of a camera: a
// low-frequency vignetting field and a high-frequency noise field,
// together reconstructing the average image the signature was measured
// from. Fingerprints are created once by the extractor, persisted as
// float rasters, and treated as read-only afterwards.
package fingerprint

import (
	"errors"
	"fmt"

	"github.com/menta2k/camera-styler/pkg/field"
)

// ErrInvalidFingerprint is returned when a fingerprint's fields are
// missing, empty or differently sized.
var ErrInvalidFingerprint = errors.New("invalid fingerprint")

// Fingerprint pairs the two components of a camera signature. Vignetting
// is the multiplicative brightness-falloff map, Noise the additive
// residual; Vignetting + Noise equals the average image they were
// decomposed from.
type Fingerprint struct {
	Vignetting *field.Field
	Noise      *field.Field
}

// New wraps the two component fields after checking them for shape.
func New(vignetting, noise *field.Field) (*Fingerprint, error) {
	fp := &Fingerprint{Vignetting: vignetting, Noise: noise}
	if err := fp.Validate(); err != nil {
		return nil, err
	}
	return fp, nil
}

// Validate checks that both fields are present, non-empty and share the
// same dimensions.
func (fp *Fingerprint) Validate() error {
	if fp == nil || fp.Vignetting.Empty() || fp.Noise.Empty() {
		return fmt.Errorf("%w: empty field", ErrInvalidFingerprint)
	}
	if fp.Vignetting.Width() != fp.Noise.Width() || fp.Vignetting.Height() != fp.Noise.Height() {
		return fmt.Errorf("%w: vignetting %dx%d vs noise %dx%d", ErrInvalidFingerprint,
			fp.Vignetting.Width(), fp.Vignetting.Height(),
			fp.Noise.Width(), fp.Noise.Height())
	}
	return nil
}

// NormalizedVignetting returns a copy of the vignetting field scaled so
// its maximum is 1.0. The copy is exported for inspection only; the
// applicator normalizes after resampling instead.
func (fp *Fingerprint) NormalizedVignetting() *field.Field {
	return fp.Vignetting.Normalized()
}
