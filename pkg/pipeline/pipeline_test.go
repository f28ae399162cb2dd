package pipeline

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/camera-styler/internal/config"
	"github.com/menta2k/camera-styler/internal/utils"
	"github.com/menta2k/camera-styler/pkg/extractor"
	"github.com/menta2k/camera-styler/pkg/field"
	"github.com/menta2k/camera-styler/pkg/fingerprint"
)

func solidField(w, h int, value float64) *field.Field {
	f := field.New(w, h)
	for i := range f.Pix() {
		f.Pix()[i] = value
	}
	return f
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Paths.RawImagesDir = filepath.Join(root, "raw")
	cfg.Paths.CleanImagesDir = filepath.Join(root, "clean")
	cfg.Paths.OutputDir = filepath.Join(root, "out")
	cfg.Analyzer.ProcessResolution = []int{8, 8}
	cfg.Analyzer.GaussianBlurKernel = []int{3, 3}
	cfg.Applicator.NoiseAlpha = 1.0
	return cfg
}

func writeGrayPNG(t *testing.T, path string, w, h int, value uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := utils.SaveImage(img, path, 90); err != nil {
		t.Fatal(err)
	}
}

func TestRunExtractAndApply(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	// Raw batch: four good images, one corrupt
	for i, name := range []string{"r0.png", "r1.png", "r2.png", "r3.png"} {
		writeGrayPNG(t, filepath.Join(cfg.Paths.RawImagesDir, name), 16, 16, uint8(120+i))
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.RawImagesDir, "broken.png"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(cfg, quietLogger())
	if err := p.RunExtract(context.Background()); err != nil {
		t.Fatalf("RunExtract failed: %v", err)
	}

	fpDir := filepath.Join(cfg.Paths.OutputDir, cfg.Paths.FingerprintSubdir)
	for _, name := range []string{fingerprint.VignettingFile, fingerprint.NoiseFile, fingerprint.VignettingNormalizedFile} {
		if !utils.FileExists(filepath.Join(fpDir, name)) {
			t.Errorf("Expected %s after extraction", name)
		}
	}

	// Clean batch at a different resolution, plus one corrupt image
	for _, name := range []string{"c0.png", "c1.jpg", "c2.png"} {
		writeGrayPNG(t, filepath.Join(cfg.Paths.CleanImagesDir, name), 20, 12, 180)
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.CleanImagesDir, "broken.jpg"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := p.RunApply(context.Background()); err != nil {
		t.Fatalf("RunApply failed: %v", err)
	}

	styledDir := filepath.Join(cfg.Paths.OutputDir, cfg.Paths.StylizedSubdir)
	for _, name := range []string{"stylized_c0.png", "stylized_c1.jpg", "stylized_c2.png"} {
		if !utils.FileExists(filepath.Join(styledDir, name)) {
			t.Errorf("Expected %s after application", name)
		}
	}
	if utils.FileExists(filepath.Join(styledDir, "stylized_broken.jpg")) {
		t.Error("Corrupt clean image should have been skipped")
	}
}

func TestRunExtractMissingRawDir(t *testing.T) {
	cfg := testConfig(t.TempDir())
	p := New(cfg, quietLogger())
	if err := p.RunExtract(context.Background()); err == nil {
		t.Error("Missing raw directory should be fatal to extract")
	}
}

func TestRunExtractEmptyRawDir(t *testing.T) {
	cfg := testConfig(t.TempDir())
	if err := os.MkdirAll(cfg.Paths.RawImagesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	p := New(cfg, quietLogger())
	if err := p.RunExtract(context.Background()); !errors.Is(err, extractor.ErrNoUsableImages) {
		t.Errorf("Expected ErrNoUsableImages, got %v", err)
	}
}

func TestRunApplyMissingFingerprint(t *testing.T) {
	cfg := testConfig(t.TempDir())
	p := New(cfg, quietLogger())
	if err := p.RunApply(context.Background()); !errors.Is(err, fingerprint.ErrFingerprintNotFound) {
		t.Errorf("Expected ErrFingerprintNotFound, got %v", err)
	}
}

func TestRunApplyMissingCleanDirIsCreated(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	// Persist a fingerprint directly so apply can load it
	v := solidField(8, 8, 128)
	n := solidField(8, 8, 0)
	fp, err := fingerprint.New(v, n)
	if err != nil {
		t.Fatal(err)
	}
	if err := fp.Save(filepath.Join(cfg.Paths.OutputDir, cfg.Paths.FingerprintSubdir)); err != nil {
		t.Fatal(err)
	}

	p := New(cfg, quietLogger())
	if err := p.RunApply(context.Background()); err != nil {
		t.Fatalf("Missing clean dir should not be fatal: %v", err)
	}
	if !utils.DirExists(cfg.Paths.CleanImagesDir) {
		t.Error("Clean directory should have been created")
	}
}

func TestRunAll(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	writeGrayPNG(t, filepath.Join(cfg.Paths.RawImagesDir, "r.png"), 8, 8, 128)
	writeGrayPNG(t, filepath.Join(cfg.Paths.CleanImagesDir, "c.png"), 8, 8, 200)

	p := New(cfg, quietLogger())
	if err := p.RunAll(context.Background()); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	styled := filepath.Join(cfg.Paths.OutputDir, cfg.Paths.StylizedSubdir, "stylized_c.png")
	if !utils.FileExists(styled) {
		t.Error("RunAll should produce the stylized image")
	}

	// A flat fingerprint must leave a flat clean image at its own value
	img, err := utils.LoadImage(styled)
	if err != nil {
		t.Fatal(err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		converted := image.NewGray(img.Bounds())
		for y := 0; y < img.Bounds().Dy(); y++ {
			for x := 0; x < img.Bounds().Dx(); x++ {
				converted.Set(x, y, img.At(x, y))
			}
		}
		gray = converted
	}
	if v := gray.GrayAt(4, 4).Y; v < 198 || v > 202 {
		t.Errorf("Expected ~200, got %d", v)
	}
}

func TestRunApplyCanceled(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	v := solidField(8, 8, 128)
	n := solidField(8, 8, 0)
	fp, err := fingerprint.New(v, n)
	if err != nil {
		t.Fatal(err)
	}
	if err := fp.Save(filepath.Join(cfg.Paths.OutputDir, cfg.Paths.FingerprintSubdir)); err != nil {
		t.Fatal(err)
	}
	writeGrayPNG(t, filepath.Join(cfg.Paths.CleanImagesDir, "c.png"), 8, 8, 200)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(cfg, quietLogger())
	if err := p.RunApply(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
