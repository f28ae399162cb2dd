// Package camerastyler estimates a camera's fixed-pattern optical
// signature from a batch of images and transfers it onto clean images.
//
// The signature ("fingerprint") is split into two components: a
// low-frequency vignetting field modeling brightness falloff, applied
// multiplicatively, and a high-frequency noise field, applied additively
// with a controllable intensity. Both fields are resolution independent
// and are resampled to each target image's size on application.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		camerastyler "github.com/menta2k/camera-styler"
//		"github.com/menta2k/camera-styler/pkg/extractor"
//	)
//
//	func main() {
//		// Estimate the fingerprint from a directory of raw captures
//		fp, report, err := camerastyler.ExtractFromDir(context.Background(), "data/raw_images", extractor.Options{
//			ProcessWidth:  512,
//			ProcessHeight: 512,
//			BlurKernelW:   99,
//			BlurKernelH:   99,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("processed %d images", report.Processed())
//
//		// Stamp it onto a clean image
//		styler := camerastyler.NewStyler(fp, 0.5)
//		if err := styler.ApplyFile("clean.jpg", "stylized_clean.jpg"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of four main components:
//
// 1. Field (pkg/field): double-precision raster planes with blur and resampling
// 2. Extractor (pkg/extractor): batch averaging and frequency decomposition
// 3. Fingerprint (pkg/fingerprint): the two-field signature and its persistence
// 4. Applicator (pkg/applicator): resolution-independent signature transfer
package camerastyler

import (
	"context"
	"fmt"
	"image"

	"github.com/menta2k/camera-styler/internal/utils"
	"github.com/menta2k/camera-styler/pkg/applicator"
	"github.com/menta2k/camera-styler/pkg/extractor"
	"github.com/menta2k/camera-styler/pkg/fingerprint"
)

// Version of the camera styler library
const Version = "1.0.0"

// ExtractFromDir estimates a fingerprint from every supported image
// directly inside dir. Undecodable images are skipped and recorded in
// the report.
func ExtractFromDir(ctx context.Context, dir string, opts extractor.Options) (*fingerprint.Fingerprint, *extractor.Report, error) {
	files, err := utils.ListImageFiles(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("list images in %s: %w", dir, err)
	}
	return extractor.Extract(ctx, extractor.FileSources(files), opts)
}

// Styler applies one loaded fingerprint to many images.
type Styler struct {
	fp         *fingerprint.Fingerprint
	noiseAlpha float64
}

// NewStyler wraps a fingerprint with a noise intensity. Alpha 0 disables
// the noise component, 1 reproduces the measured amplitude.
func NewStyler(fp *fingerprint.Fingerprint, noiseAlpha float64) *Styler {
	return &Styler{fp: fp, noiseAlpha: noiseAlpha}
}

// LoadStyler loads a persisted fingerprint from dir and wraps it.
func LoadStyler(dir string, noiseAlpha float64) (*Styler, error) {
	fp, err := fingerprint.Load(dir)
	if err != nil {
		return nil, err
	}
	return NewStyler(fp, noiseAlpha), nil
}

// Fingerprint returns the wrapped fingerprint.
func (s *Styler) Fingerprint() *fingerprint.Fingerprint { return s.fp }

// Apply stylizes a decoded image.
func (s *Styler) Apply(img image.Image) (*image.Gray, error) {
	return applicator.Apply(img, s.fp, s.noiseAlpha)
}

// ApplyFile stylizes the image at inPath and writes it to outPath, with
// the codec picked from the output extension.
func (s *Styler) ApplyFile(inPath, outPath string) error {
	img, err := utils.LoadImage(inPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inPath, err)
	}
	stylized, err := s.Apply(img)
	if err != nil {
		return err
	}
	return utils.SaveImage(stylized, outPath, 90)
}
