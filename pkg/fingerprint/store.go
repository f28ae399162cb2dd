package fingerprint

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/pfm"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/menta2k/camera-styler/pkg/field"
)

// ErrFingerprintNotFound is returned by Load when the persisted field
// files are absent.
var ErrFingerprintNotFound = errors.New("fingerprint files not found")

// File names under the fingerprint directory. PFM keeps full float32
// precision and, unlike RGBE's shared-exponent encoding, can hold the
// noise field's negative samples.
const (
	VignettingFile           = "vignetting_map.pfm"
	NoiseFile                = "noise_map.pfm"
	VignettingNormalizedFile = "vignetting_map_normalized.pfm"
)

// fieldImage adapts a field.Field to the hdr.Image interface so the pfm
// codec can encode it. The single luminance channel is replicated to RGB.
type fieldImage struct {
	f *field.Field
}

// Implement image.Image
func (fi fieldImage) ColorModel() color.Model { return hdrcolor.RGBModel }
func (fi fieldImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, fi.f.Width(), fi.f.Height())
}
func (fi fieldImage) At(x, y int) color.Color { return fi.HDRAt(x, y) }

// Implement hdr.Image
func (fi fieldImage) HDRAt(x, y int) hdrcolor.Color {
	v := fi.f.At(x, y)
	return hdrcolor.RGB{R: v, G: v, B: v}
}
func (fi fieldImage) Size() int { return fi.f.Width() * fi.f.Height() }

// Save writes the fingerprint into dir as three PFM rasters: the raw
// vignetting field, the noise field, and a max-normalized copy of the
// vignetting field kept for human inspection. The directory is created
// if needed.
func (fp *Fingerprint) Save(dir string) error {
	if err := fp.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create fingerprint dir %s: %w", dir, err)
	}

	files := map[string]*field.Field{
		VignettingFile:           fp.Vignetting,
		NoiseFile:                fp.Noise,
		VignettingNormalizedFile: fp.NormalizedVignetting(),
	}
	for name, f := range files {
		if err := writeField(filepath.Join(dir, name), f); err != nil {
			return err
		}
	}
	return nil
}

func writeField(path string, f *field.Field) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer w.Close()

	if err := pfm.Encode(w, fieldImage{f}); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// Load reads a fingerprint previously written by Save. Only the raw
// vignetting and noise rasters are read back; the normalized copy is
// never used in reapplication math.
func Load(dir string) (*Fingerprint, error) {
	vignetting, err := readField(filepath.Join(dir, VignettingFile))
	if err != nil {
		return nil, err
	}
	noise, err := readField(filepath.Join(dir, NoiseFile))
	if err != nil {
		return nil, err
	}
	return New(vignetting, noise)
}

func readField(path string) (*field.Field, error) {
	r, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFingerprintNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	img, err := pfm.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	hdrImg, ok := img.(hdr.Image)
	if !ok {
		return nil, fmt.Errorf("decode %s: not a float raster", path)
	}

	bounds := hdrImg.Bounds()
	f := field.New(bounds.Dx(), bounds.Dy())
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			v, _, _, _ := hdrImg.HDRAt(bounds.Min.X+x, bounds.Min.Y+y).HDRRGBA()
			f.Set(x, y, v)
		}
	}
	return f, nil
}
