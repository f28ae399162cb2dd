package field

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/gonum/floats"
)

// Field is a single-channel raster plane stored as float64 samples.
// It is the working representation for accumulated averages, vignetting
// maps and noise maps; unlike an 8-bit image its samples may be negative
// and carry full double precision through the pipeline.
type Field struct {
	width  int
	height int
	pix    []float64
}

// New creates a zero-valued field of the given dimensions.
func New(width, height int) *Field {
	return &Field{
		width:  width,
		height: height,
		pix:    make([]float64, width*height),
	}
}

// FromImage converts an image to a luminance field. Grayscale inputs are
// read directly; color inputs are reduced with the standard perceptual
// weights (0.299 R + 0.587 G + 0.114 B).
func FromImage(img image.Image) *Field {
	bounds := img.Bounds()
	f := New(bounds.Dx(), bounds.Dy())

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < f.height; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+f.width]
			for x, v := range row {
				f.pix[y*f.width+x] = float64(v)
			}
		}
	case *image.NRGBA:
		for y := 0; y < f.height; y++ {
			for x := 0; x < f.width; x++ {
				i := y*src.Stride + x*4
				r := float64(src.Pix[i+0])
				g := float64(src.Pix[i+1])
				b := float64(src.Pix[i+2])
				f.pix[y*f.width+x] = 0.299*r + 0.587*g + 0.114*b
			}
		}
	default:
		for y := 0; y < f.height; y++ {
			for x := 0; x < f.width; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
				f.pix[y*f.width+x] = lum
			}
		}
	}

	return f
}

// Width returns the field width in samples.
func (f *Field) Width() int { return f.width }

// Height returns the field height in samples.
func (f *Field) Height() int { return f.height }

// At returns the sample at (x, y).
func (f *Field) At(x, y int) float64 { return f.pix[y*f.width+x] }

// Set stores a sample at (x, y).
func (f *Field) Set(x, y int, v float64) { f.pix[y*f.width+x] = v }

// Pix exposes the flat backing slice, row-major.
func (f *Field) Pix() []float64 { return f.pix }

// Empty reports whether the field has no samples.
func (f *Field) Empty() bool { return f == nil || len(f.pix) == 0 }

// Clone returns an independent copy of the field.
func (f *Field) Clone() *Field {
	c := New(f.width, f.height)
	copy(c.pix, f.pix)
	return c
}

// Add accumulates other into f elementwise. The fields must have
// identical dimensions.
func (f *Field) Add(other *Field) error {
	if f.width != other.width || f.height != other.height {
		return fmt.Errorf("field add: size mismatch %dx%d vs %dx%d",
			f.width, f.height, other.width, other.height)
	}
	floats.Add(f.pix, other.pix)
	return nil
}

// Sub returns f - other elementwise. The fields must have identical
// dimensions.
func (f *Field) Sub(other *Field) (*Field, error) {
	if f.width != other.width || f.height != other.height {
		return nil, fmt.Errorf("field sub: size mismatch %dx%d vs %dx%d",
			f.width, f.height, other.width, other.height)
	}
	out := f.Clone()
	floats.Sub(out.pix, other.pix)
	return out, nil
}

// Scale multiplies every sample by k in place.
func (f *Field) Scale(k float64) {
	floats.Scale(k, f.pix)
}

// Max returns the largest sample value, or 0 for an empty field.
func (f *Field) Max() float64 {
	if len(f.pix) == 0 {
		return 0
	}
	return floats.Max(f.pix)
}

// Normalized returns a copy of the field divided by its own maximum, so
// the brightest sample becomes 1.0. Fields whose maximum is zero are
// returned unchanged to avoid dividing by zero.
func (f *Field) Normalized() *Field {
	out := f.Clone()
	if max := out.Max(); max != 0 {
		floats.Scale(1/max, out.pix)
	}
	return out
}

// ToGray converts the field to an 8-bit grayscale image, clamping every
// sample to [0, 255] and rounding to the nearest integer.
func (f *Field) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			img.SetGray(x, y, color.Gray{Y: clampUint8(f.pix[y*f.width+x])})
		}
	}
	return img
}

func clampUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
