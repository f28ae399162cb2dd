package field

import "fmt"

// Resize resamples the field to the given dimensions with a Catmull-Rom
// cubic filter. Cubic interpolation keeps the resampled field smooth at
// arbitrary target sizes; the 8-bit resamplers in the imaging package are
// not used here because field samples are signed double precision.
func (f *Field) Resize(width, height int) (*Field, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("field resize: invalid target %dx%d", width, height)
	}
	if f.Empty() {
		return nil, fmt.Errorf("field resize: empty source")
	}
	if width == f.width && height == f.height {
		return f.Clone(), nil
	}

	// Horizontal pass, then vertical.
	tmp := New(width, f.height)
	scaleX := float64(f.width) / float64(width)
	for y := 0; y < f.height; y++ {
		for x := 0; x < width; x++ {
			sx := (float64(x)+0.5)*scaleX - 0.5
			tmp.pix[y*width+x] = cubicSample(f.pix[y*f.width:y*f.width+f.width], 1, f.width, sx)
		}
	}

	out := New(width, height)
	scaleY := float64(f.height) / float64(height)
	for x := 0; x < width; x++ {
		col := tmp.pix[x:]
		for y := 0; y < height; y++ {
			sy := (float64(y)+0.5)*scaleY - 0.5
			out.pix[y*width+x] = cubicSample(col, width, f.height, sy)
		}
	}

	return out, nil
}

// cubicSample interpolates a strided 1D signal of length n at fractional
// position pos using the Catmull-Rom kernel. Taps beyond the signal are
// clamped to the edge samples.
func cubicSample(sig []float64, stride, n int, pos float64) float64 {
	base := int(pos)
	if pos < 0 {
		base = -1
	}
	t := pos - float64(base)

	w0, w1, w2, w3 := catmullRomWeights(t)

	s := func(i int) float64 {
		if i < 0 {
			i = 0
		} else if i >= n {
			i = n - 1
		}
		return sig[i*stride]
	}

	return w0*s(base-1) + w1*s(base) + w2*s(base+1) + w3*s(base+2)
}

// catmullRomWeights returns the 4-tap weights for fractional offset t in
// [0, 1). The weights sum to exactly 1, so flat signals are preserved.
func catmullRomWeights(t float64) (w0, w1, w2, w3 float64) {
	t2 := t * t
	t3 := t2 * t
	w0 = 0.5 * (-t3 + 2*t2 - t)
	w1 = 0.5 * (3*t3 - 5*t2 + 2)
	w2 = 0.5 * (-3*t3 + 4*t2 + t)
	w3 = 0.5 * (t3 - t2)
	return
}
