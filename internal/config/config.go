// Package config loads wafer-map viewer settings from a JSON or YAML file.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/wafermap/internal/centers"
	"github.com/banshee-data/wafermap/internal/fsutil"
)

// Defaults.
const (
	DefaultMaskDir          = "masks"
	DefaultMaskExtension    = ".ini"
	DefaultOutputDir        = "reports"
	DefaultLinearBinWidth   = 5.0
	DefaultLinearBinMax     = 80.0
	DefaultEqualAreaBinArea = 2000.0 // mm²
	DefaultEqualAreaBins    = 9
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config holds the viewer settings. Nil fields fall back to the defaults
// returned by the Get* methods, so partial files are safe.
type Config struct {
	MaskDir       *string `json:"mask_dir,omitempty" yaml:"mask_dir,omitempty"`
	MaskExtension *string `json:"mask_extension,omitempty" yaml:"mask_extension,omitempty"`
	OutputDir     *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`

	// Histogram binning
	LinearBinWidth    *float64 `json:"linear_bin_width,omitempty" yaml:"linear_bin_width,omitempty"`
	LinearBinMax      *float64 `json:"linear_bin_max,omitempty" yaml:"linear_bin_max,omitempty"`
	EqualAreaBinArea  *float64 `json:"equal_area_bin_area,omitempty" yaml:"equal_area_bin_area,omitempty"`
	EqualAreaBinCount *int     `json:"equal_area_bin_count,omitempty" yaml:"equal_area_bin_count,omitempty"`

	// Centers adds or overrides mask centres: name -> [x, y].
	Centers map[string][]int `json:"centers,omitempty" yaml:"centers,omitempty"`
}

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from path on the local filesystem.
func Load(path string) (*Config, error) {
	return LoadFS(fsutil.OSFileSystem{}, path)
}

// LoadFS reads a Config from path on fs. The extension selects the format:
// .json, .yaml or .yml.
func LoadFS(fs fsutil.FileSystem, path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	info, err := fs.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := fs.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *Config) Validate() error {
	if c.MaskExtension != nil && !strings.HasPrefix(*c.MaskExtension, ".") {
		return fmt.Errorf("mask_extension must start with '.', got %q", *c.MaskExtension)
	}
	if c.LinearBinWidth != nil && *c.LinearBinWidth <= 0 {
		return fmt.Errorf("linear_bin_width must be positive, got %g", *c.LinearBinWidth)
	}
	if c.LinearBinMax != nil && *c.LinearBinMax <= 0 {
		return fmt.Errorf("linear_bin_max must be positive, got %g", *c.LinearBinMax)
	}
	if c.EqualAreaBinArea != nil && *c.EqualAreaBinArea <= 0 {
		return fmt.Errorf("equal_area_bin_area must be positive, got %g", *c.EqualAreaBinArea)
	}
	if c.EqualAreaBinCount != nil && *c.EqualAreaBinCount < 1 {
		return fmt.Errorf("equal_area_bin_count must be at least 1, got %d", *c.EqualAreaBinCount)
	}
	for _, name := range c.centerNames() {
		xy := c.Centers[name]
		if len(xy) != 2 {
			return fmt.Errorf("center %q must be [x, y], got %v", name, xy)
		}
		if xy[0] < 1 || xy[1] < 1 {
			return fmt.Errorf("center %q coordinates must be >= 1, got %v", name, xy)
		}
	}
	return nil
}

func (c *Config) centerNames() []string {
	names := make([]string, 0, len(c.Centers))
	for k := range c.Centers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// GetMaskDir returns the mask directory or the default.
func (c *Config) GetMaskDir() string {
	if c.MaskDir == nil || *c.MaskDir == "" {
		return DefaultMaskDir
	}
	return *c.MaskDir
}

// GetMaskExtension returns the mask file extension or the default.
func (c *Config) GetMaskExtension() string {
	if c.MaskExtension == nil || *c.MaskExtension == "" {
		return DefaultMaskExtension
	}
	return *c.MaskExtension
}

// GetOutputDir returns the report directory or the default.
func (c *Config) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return DefaultOutputDir
	}
	return *c.OutputDir
}

func (c *Config) GetLinearBinWidth() float64 {
	if c.LinearBinWidth == nil {
		return DefaultLinearBinWidth
	}
	return *c.LinearBinWidth
}

func (c *Config) GetLinearBinMax() float64 {
	if c.LinearBinMax == nil {
		return DefaultLinearBinMax
	}
	return *c.LinearBinMax
}

func (c *Config) GetEqualAreaBinArea() float64 {
	if c.EqualAreaBinArea == nil {
		return DefaultEqualAreaBinArea
	}
	return *c.EqualAreaBinArea
}

func (c *Config) GetEqualAreaBinCount() int {
	if c.EqualAreaBinCount == nil {
		return DefaultEqualAreaBins
	}
	return *c.EqualAreaBinCount
}

// CenterRegistry returns the built-in centres merged with the configured
// overrides. Call Validate first; malformed entries are skipped.
func (c *Config) CenterRegistry() *centers.Registry {
	overrides := make(map[string]centers.Center, len(c.Centers))
	for name, xy := range c.Centers {
		if len(xy) != 2 {
			continue
		}
		overrides[name] = centers.Center{X: xy[0], Y: xy[1]}
	}
	return centers.New(overrides)
}
