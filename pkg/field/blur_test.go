package field

import (
	"math"
	"testing"
)

func TestGaussianBlurKernelValidation(t *testing.T) {
	f := New(8, 8)
	tests := []struct {
		name   string
		kw, kh int
	}{
		{"even width", 4, 3},
		{"even height", 3, 4},
		{"zero width", 0, 3},
		{"negative", -3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.GaussianBlur(tt.kw, tt.kh); err == nil {
				t.Errorf("kernel %dx%d should be rejected", tt.kw, tt.kh)
			}
		})
	}
}

func TestGaussianBlurUniformStaysUniform(t *testing.T) {
	f := New(16, 12)
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			f.Set(x, y, 128)
		}
	}

	blurred, err := f.GaussianBlur(5, 7)
	if err != nil {
		t.Fatalf("GaussianBlur failed: %v", err)
	}
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			if math.Abs(blurred.At(x, y)-128) > tolerance {
				t.Errorf("Uniform field changed at (%d,%d): %f", x, y, blurred.At(x, y))
			}
		}
	}
}

func TestGaussianBlurSmooths(t *testing.T) {
	// A single impulse spreads: the center loses energy, the neighbors
	// gain some, and the total is preserved by the normalized kernel
	// with mirrored borders.
	f := New(9, 9)
	f.Set(4, 4, 100)

	blurred, err := f.GaussianBlur(3, 3)
	if err != nil {
		t.Fatalf("GaussianBlur failed: %v", err)
	}

	if blurred.At(4, 4) >= 100 {
		t.Errorf("Impulse center should lose energy, got %f", blurred.At(4, 4))
	}
	if blurred.At(3, 4) <= 0 {
		t.Errorf("Impulse neighbor should gain energy, got %f", blurred.At(3, 4))
	}

	var total float64
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			total += blurred.At(x, y)
		}
	}
	if math.Abs(total-100) > 1e-6 {
		t.Errorf("Blur should preserve total energy away from borders, got %f", total)
	}
}

func TestDecompositionLossless(t *testing.T) {
	// blur(A) + (A - blur(A)) must reconstruct A exactly
	avg := createGradientField(20, 15)

	low, err := avg.GaussianBlur(9, 9)
	if err != nil {
		t.Fatalf("GaussianBlur failed: %v", err)
	}
	high, err := avg.Sub(low)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}

	reconstructed := low.Clone()
	if err := reconstructed.Add(high); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	for y := 0; y < 15; y++ {
		for x := 0; x < 20; x++ {
			if math.Abs(reconstructed.At(x, y)-avg.At(x, y)) > 1e-12 {
				t.Errorf("Reconstruction differs at (%d,%d): %g vs %g",
					x, y, reconstructed.At(x, y), avg.At(x, y))
			}
		}
	}
}

func TestGaussianKernelNormalized(t *testing.T) {
	for _, k := range []int{1, 3, 5, 31, 99} {
		kernel := gaussianKernel(k)
		if len(kernel) != k {
			t.Fatalf("kernel size %d: got %d taps", k, len(kernel))
		}
		var sum float64
		for _, w := range kernel {
			sum += w
		}
		if math.Abs(sum-1) > tolerance {
			t.Errorf("kernel size %d sums to %f", k, sum)
		}
		// Symmetric around the center
		for i := 0; i < k/2; i++ {
			if math.Abs(kernel[i]-kernel[k-1-i]) > tolerance {
				t.Errorf("kernel size %d not symmetric at %d", k, i)
			}
		}
	}
}

func TestReflect101(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{2, 5, 2},
		{-1, 1, 0},
		{3, 1, 0},
	}
	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}
