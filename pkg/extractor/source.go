package extractor

import (
	"image"
	"path/filepath"

	"github.com/menta2k/camera-styler/internal/utils"
)

// FileSource is an ImageSource backed by a file on disk.
type FileSource struct {
	Path string
}

// ID returns the file's base name.
func (s FileSource) ID() string { return filepath.Base(s.Path) }

// Decode reads and decodes the image file.
func (s FileSource) Decode() (image.Image, error) {
	return utils.LoadImage(s.Path)
}

// FileSources wraps a list of paths as sources.
func FileSources(paths []string) []ImageSource {
	sources := make([]ImageSource, len(paths))
	for i, p := range paths {
		sources[i] = FileSource{Path: p}
	}
	return sources
}
