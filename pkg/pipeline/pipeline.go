// Package pipeline wires the extractor and applicator to the directory
// layout from the configuration: extract averages the raw image
// directory into a persisted fingerprint, apply stamps that fingerprint
// onto every clean image.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/camera-styler/internal/config"
	"github.com/menta2k/camera-styler/internal/utils"
	"github.com/menta2k/camera-styler/pkg/applicator"
	"github.com/menta2k/camera-styler/pkg/extractor"
	"github.com/menta2k/camera-styler/pkg/fingerprint"
)

const jpegQuality = 90

// Pipeline runs the extract and apply stages over the configured
// directories.
type Pipeline struct {
	cfg     *config.Config
	log     *logrus.Logger
	workers int
}

// New creates a pipeline using up to one worker per CPU.
func New(cfg *config.Config, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		cfg:     cfg,
		log:     log,
		workers: runtime.NumCPU(),
	}
}

func (p *Pipeline) fingerprintDir() string {
	return filepath.Join(p.cfg.Paths.OutputDir, p.cfg.Paths.FingerprintSubdir)
}

func (p *Pipeline) stylizedDir() string {
	return filepath.Join(p.cfg.Paths.OutputDir, p.cfg.Paths.StylizedSubdir)
}

// RunExtract extracts the camera fingerprint from the raw image
// directory and persists it. A missing raw directory or a batch with no
// decodable image is fatal to the action.
func (p *Pipeline) RunExtract(ctx context.Context) error {
	files, err := utils.ListImageFiles(p.cfg.Paths.RawImagesDir)
	if err != nil {
		return fmt.Errorf("list raw images in %s: %w", p.cfg.Paths.RawImagesDir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", extractor.ErrNoUsableImages, p.cfg.Paths.RawImagesDir)
	}
	p.log.Infof("found %d raw images, analyzing...", len(files))

	fp, report, err := extractor.Extract(ctx, extractor.FileSources(files), extractor.Options{
		ProcessWidth:  p.cfg.ProcessWidth(),
		ProcessHeight: p.cfg.ProcessHeight(),
		BlurKernelW:   p.cfg.BlurKernelW(),
		BlurKernelH:   p.cfg.BlurKernelH(),
		Workers:       p.workers,
	})
	if report != nil {
		for _, f := range report.Failures() {
			p.log.WithField("file", f.ID).WithError(f.Err).Warn("skipped raw image")
		}
	}
	if err != nil {
		return err
	}
	p.log.Infof("processed %d/%d raw images", report.Processed(), len(files))

	if err := fp.Save(p.fingerprintDir()); err != nil {
		return fmt.Errorf("save fingerprint: %w", err)
	}
	p.log.Infof("fingerprint saved to %s", p.fingerprintDir())
	return nil
}

// RunApply loads the persisted fingerprint and stylizes every clean
// image. A missing clean directory is created and treated as nothing to
// do; per-image failures are logged and skipped.
func (p *Pipeline) RunApply(ctx context.Context) error {
	fp, err := fingerprint.Load(p.fingerprintDir())
	if err != nil {
		return fmt.Errorf("load fingerprint: %w", err)
	}

	cleanDir := p.cfg.Paths.CleanImagesDir
	if !utils.DirExists(cleanDir) {
		if err := utils.EnsureDir(cleanDir); err != nil {
			return fmt.Errorf("create clean images dir %s: %w", cleanDir, err)
		}
		p.log.Infof("created %s, place clean images there and rerun", cleanDir)
		return nil
	}

	files, err := utils.ListImageFiles(cleanDir)
	if err != nil {
		return fmt.Errorf("list clean images in %s: %w", cleanDir, err)
	}
	if len(files) == 0 {
		p.log.Infof("no clean images found in %s", cleanDir)
		return nil
	}

	if err := utils.EnsureDir(p.stylizedDir()); err != nil {
		return fmt.Errorf("create stylized dir %s: %w", p.stylizedDir(), err)
	}

	p.log.Infof("found %d clean images, applying style...", len(files))

	// Each image is independent, so the batch fans out over a worker
	// pool; only the success counter is shared.
	var done int64
	jobs := make(chan string)
	var wg sync.WaitGroup
	workers := p.workers
	if workers > len(files) {
		workers = len(files)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if err := p.applyOne(path, fp); err != nil {
					p.log.WithField("file", filepath.Base(path)).WithError(err).Warn("skipped clean image")
					continue
				}
				atomic.AddInt64(&done, 1)
			}
		}()
	}

	var canceled error
dispatch:
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			canceled = err
			break
		}
		select {
		case <-ctx.Done():
			canceled = ctx.Err()
			break dispatch
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	if canceled != nil {
		return canceled
	}
	p.log.Infof("stylized %d/%d images into %s", done, len(files), p.stylizedDir())
	return nil
}

// RunAll runs extraction followed by application.
func (p *Pipeline) RunAll(ctx context.Context) error {
	if err := p.RunExtract(ctx); err != nil {
		return err
	}
	return p.RunApply(ctx)
}

func (p *Pipeline) applyOne(path string, fp *fingerprint.Fingerprint) error {
	img, err := utils.LoadImage(path)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	stylized, err := applicator.Apply(img, fp, p.cfg.Applicator.NoiseAlpha)
	if err != nil {
		return err
	}

	out := utils.StylizedFilename(path, p.stylizedDir())
	if err := utils.SaveImage(stylized, out, jpegQuality); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}
	return nil
}
