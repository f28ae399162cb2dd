package field

import (
	"fmt"
	"math"
)

// GaussianBlur returns the field convolved with a separable Gaussian of
// the given kernel size. Both dimensions must be positive odd integers.
// The standard deviation is derived from the kernel size using the
// OpenCV convention sigma = 0.3*((k-1)*0.5 - 1) + 0.8, and borders are
// handled with reflect-101 mirroring, so blurring a uniform field leaves
// it uniform.
func (f *Field) GaussianBlur(kw, kh int) (*Field, error) {
	if kw < 1 || kw%2 == 0 || kh < 1 || kh%2 == 0 {
		return nil, fmt.Errorf("gaussian blur: kernel %dx%d must be positive odd", kw, kh)
	}

	kx := gaussianKernel(kw)
	ky := gaussianKernel(kh)

	// Horizontal pass into a temporary, then vertical pass.
	tmp := New(f.width, f.height)
	rx := kw / 2
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			var sum float64
			for i := -rx; i <= rx; i++ {
				sum += kx[i+rx] * f.pix[y*f.width+reflect101(x+i, f.width)]
			}
			tmp.pix[y*f.width+x] = sum
		}
	}

	out := New(f.width, f.height)
	ry := kh / 2
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			var sum float64
			for i := -ry; i <= ry; i++ {
				sum += ky[i+ry] * tmp.pix[reflect101(y+i, f.height)*f.width+x]
			}
			out.pix[y*f.width+x] = sum
		}
	}

	return out, nil
}

// gaussianKernel builds a normalized 1D Gaussian of odd size k with the
// size-derived sigma.
func gaussianKernel(k int) []float64 {
	sigma := 0.3*(float64(k-1)*0.5-1) + 0.8
	center := k / 2

	kernel := make([]float64, k)
	var total float64
	for i := range kernel {
		d := float64(i - center)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		total += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= total
	}
	return kernel
}

// reflect101 mirrors an out-of-range index without repeating the edge
// sample (OpenCV BORDER_REFLECT_101).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
