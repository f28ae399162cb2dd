// Package applicator transfers a measured camera signature onto clean
// images: the vignetting field multiplies the luminance, the noise field
// adds on top with a user-controlled intensity.
package applicator

import (
	"fmt"
	"image"

	"github.com/menta2k/camera-styler/pkg/field"
	"github.com/menta2k/camera-styler/pkg/fingerprint"
)

// Apply stylizes clean with the fingerprint. Multi-channel inputs are
// reduced to luminance. Both fields are resampled to the clean image's
// exact dimensions, the vignetting field is normalized by its own
// maximum so it reproduces relative falloff without shifting overall
// brightness, and the noise field is added scaled by noiseAlpha (0
// disables it, 1 reproduces the measured amplitude). The result is
// clamped to the 8-bit range.
func Apply(clean image.Image, fp *fingerprint.Fingerprint, noiseAlpha float64) (*image.Gray, error) {
	if err := fp.Validate(); err != nil {
		return nil, err
	}
	if noiseAlpha < 0 {
		return nil, fmt.Errorf("noise alpha %g must be non-negative", noiseAlpha)
	}

	lum := field.FromImage(clean)
	if lum.Empty() {
		return nil, fmt.Errorf("empty input image")
	}
	w, h := lum.Width(), lum.Height()

	vignetting, err := fp.Vignetting.Resize(w, h)
	if err != nil {
		return nil, fmt.Errorf("resample vignetting: %w", err)
	}
	vignetting = vignetting.Normalized()

	var noise *field.Field
	if noiseAlpha > 0 {
		noise, err = fp.Noise.Resize(w, h)
		if err != nil {
			return nil, fmt.Errorf("resample noise: %w", err)
		}
	}

	out := field.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := lum.At(x, y) * vignetting.At(x, y)
			if noise != nil {
				v += noise.At(x, y) * noiseAlpha
			}
			out.Set(x, y, v)
		}
	}

	return out.ToGray(), nil
}
