package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the application configuration
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Analyzer   AnalyzerConfig   `yaml:"analyzer"`
	Applicator ApplicatorConfig `yaml:"applicator"`
}

// PathsConfig holds the directory layout
type PathsConfig struct {
	RawImagesDir      string `yaml:"raw_images_dir"`
	CleanImagesDir    string `yaml:"clean_images_dir"`
	OutputDir         string `yaml:"output_dir"`
	FingerprintSubdir string `yaml:"fingerprint_subdir"`
	StylizedSubdir    string `yaml:"stylized_subdir"`
}

// AnalyzerConfig holds configuration for fingerprint extraction
type AnalyzerConfig struct {
	ProcessResolution  []int `yaml:"process_resolution"`
	GaussianBlurKernel []int `yaml:"gaussian_blur_kernel"`
}

// ApplicatorConfig holds configuration for style application
type ApplicatorConfig struct {
	NoiseAlpha float64 `yaml:"noise_alpha"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			RawImagesDir:      "data/raw_images",
			CleanImagesDir:    "data/clean_images",
			OutputDir:         "output",
			FingerprintSubdir: "camera_fingerprint",
			StylizedSubdir:    "stylized_images",
		},
		Analyzer: AnalyzerConfig{
			ProcessResolution:  []int{512, 512},
			GaussianBlurKernel: []int{99, 99},
		},
		Applicator: ApplicatorConfig{
			NoiseAlpha: 0.5,
		},
	}
}

// LoadFromFile loads configuration from a YAML file, starting from the
// defaults so a partial document stays usable
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Paths.RawImagesDir == "" || c.Paths.CleanImagesDir == "" || c.Paths.OutputDir == "" {
		return fmt.Errorf("paths.raw_images_dir, paths.clean_images_dir and paths.output_dir must be set")
	}

	if len(c.Analyzer.ProcessResolution) != 2 {
		return fmt.Errorf("analyzer.process_resolution must be [width, height]")
	}
	if c.ProcessWidth() < 1 || c.ProcessHeight() < 1 {
		return fmt.Errorf("analyzer.process_resolution must be positive")
	}

	if len(c.Analyzer.GaussianBlurKernel) != 2 {
		return fmt.Errorf("analyzer.gaussian_blur_kernel must be [width, height]")
	}
	if kw, kh := c.BlurKernelW(), c.BlurKernelH(); kw < 1 || kw%2 == 0 || kh < 1 || kh%2 == 0 {
		return fmt.Errorf("analyzer.gaussian_blur_kernel values must be positive odd integers")
	}

	if c.Applicator.NoiseAlpha < 0 {
		return fmt.Errorf("applicator.noise_alpha must be non-negative")
	}

	return nil
}

// ProcessWidth returns the canonical analysis width
func (c *Config) ProcessWidth() int { return c.Analyzer.ProcessResolution[0] }

// ProcessHeight returns the canonical analysis height
func (c *Config) ProcessHeight() int { return c.Analyzer.ProcessResolution[1] }

// BlurKernelW returns the Gaussian kernel width
func (c *Config) BlurKernelW() int { return c.Analyzer.GaussianBlurKernel[0] }

// BlurKernelH returns the Gaussian kernel height
func (c *Config) BlurKernelH() int { return c.Analyzer.GaussianBlurKernel[1] }
