// Package extractor estimates a camera's fixed-pattern signature from a
// batch of images. Every usable image is converted to luminance, resized
// to one canonical processing resolution and accumulated into a running
// sum; the per-pixel average is then split by a strong Gaussian blur into
// a low-frequency vignetting field and a high-frequency noise residual.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/menta2k/camera-styler/pkg/field"
	"github.com/menta2k/camera-styler/pkg/fingerprint"
)

// ErrNoUsableImages is returned when not a single source image could be
// decoded and accumulated.
var ErrNoUsableImages = errors.New("no usable images")

// ImageSource is one candidate training image. Decode is called at most
// once per extraction run.
type ImageSource interface {
	ID() string
	Decode() (image.Image, error)
}

// Options control one extraction run.
type Options struct {
	// ProcessWidth and ProcessHeight set the canonical analysis
	// resolution every source image is resampled to.
	ProcessWidth  int
	ProcessHeight int

	// BlurKernelW and BlurKernelH size the Gaussian that separates the
	// low-frequency vignetting from the noise residual. Both must be
	// positive odd integers.
	BlurKernelW int
	BlurKernelH int

	// Workers caps the number of concurrent decode/accumulate workers.
	// Values below 1 mean sequential processing.
	Workers int
}

func (o Options) validate() error {
	if o.ProcessWidth < 1 || o.ProcessHeight < 1 {
		return fmt.Errorf("process resolution %dx%d must be positive", o.ProcessWidth, o.ProcessHeight)
	}
	if o.BlurKernelW < 1 || o.BlurKernelW%2 == 0 || o.BlurKernelH < 1 || o.BlurKernelH%2 == 0 {
		return fmt.Errorf("blur kernel %dx%d must be positive odd", o.BlurKernelW, o.BlurKernelH)
	}
	return nil
}

// Outcome records how one source fared. Err is nil for sources that
// contributed to the accumulator.
type Outcome struct {
	ID  string
	Err error
}

// Report collects per-source outcomes for one batch. A bad source never
// aborts the batch; callers inspect the report afterwards.
type Report struct {
	Outcomes []Outcome
}

// Processed returns the number of sources that accumulated successfully.
func (r *Report) Processed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failures returns the outcomes of the sources that were skipped.
func (r *Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// partial is one worker's share of the accumulation. Partial sums merge
// by addition, which is associative and commutative, so splitting the
// batch across workers cannot change the result.
type partial struct {
	acc      *field.Field
	count    int
	outcomes []Outcome
}

// Extract averages the sources at the processing resolution and
// decomposes the average into a fingerprint. Sources that fail to decode
// or transform are recorded in the report and skipped; if none succeed,
// ErrNoUsableImages is returned. Cancellation is honored between items.
func Extract(ctx context.Context, sources []ImageSource, opts Options) (*fingerprint.Fingerprint, *Report, error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(sources) {
		workers = len(sources)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan ImageSource)
	partials := make([]partial, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		p := &partials[w]
		p.acc = field.New(opts.ProcessWidth, opts.ProcessHeight)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				err := accumulate(p.acc, src, opts)
				if err == nil {
					p.count++
				}
				p.outcomes = append(p.outcomes, Outcome{ID: src.ID(), Err: err})
			}
		}()
	}

	var canceled error
dispatch:
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			canceled = err
			break
		}
		select {
		case <-ctx.Done():
			canceled = ctx.Err()
			break dispatch
		case jobs <- src:
		}
	}
	close(jobs)
	wg.Wait()

	if canceled != nil {
		return nil, nil, canceled
	}

	report := &Report{}
	acc := field.New(opts.ProcessWidth, opts.ProcessHeight)
	count := 0
	for i := range partials {
		if err := acc.Add(partials[i].acc); err != nil {
			return nil, nil, err
		}
		count += partials[i].count
		report.Outcomes = append(report.Outcomes, partials[i].outcomes...)
	}

	if count == 0 {
		return nil, report, ErrNoUsableImages
	}

	// Average, then split into low and high frequency components. The
	// decomposition is lossless: vignetting + noise == average.
	acc.Scale(1 / float64(count))
	vignetting, err := acc.GaussianBlur(opts.BlurKernelW, opts.BlurKernelH)
	if err != nil {
		return nil, report, err
	}
	noise, err := acc.Sub(vignetting)
	if err != nil {
		return nil, report, err
	}

	fp, err := fingerprint.New(vignetting, noise)
	if err != nil {
		return nil, report, err
	}
	return fp, report, nil
}

// accumulate decodes one source, reduces it to luminance at the
// processing resolution and adds it into acc.
func accumulate(acc *field.Field, src ImageSource, opts Options) error {
	img, err := src.Decode()
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	gray := imaging.Grayscale(img)
	// Box filtering is the area-weighted choice: it minimizes aliasing
	// when decimating many differently sized inputs to one size.
	resized := imaging.Resize(gray, opts.ProcessWidth, opts.ProcessHeight, imaging.Box)
	if resized.Bounds().Empty() {
		return fmt.Errorf("resize %s: empty result", src.ID())
	}

	return acc.Add(field.FromImage(resized))
}
