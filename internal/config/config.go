// Package config handles ovotool configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/ovokit/internal/logger"
	"github.com/Faultbox/ovokit/pkg/encoding"
	"github.com/Faultbox/ovokit/pkg/scene"
)

// Config holds all ovotool settings.
type Config struct {
	Export   ExportConfig   `yaml:"export" toml:"export"`
	Import   ImportConfig   `yaml:"import" toml:"import"`
	Validate ValidateConfig `yaml:"validate" toml:"validate"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// ExportConfig holds settings for writing OVO files.
type ExportConfig struct {
	IncludeMeshes    bool      `yaml:"include_meshes" toml:"include_meshes"`
	IncludeLights    bool      `yaml:"include_lights" toml:"include_lights"`
	RootPolicy       string    `yaml:"root_policy" toml:"root_policy"` // "always" or "forest"
	UVPrecision      int       `yaml:"uv_precision" toml:"uv_precision"`
	LODFaceThreshold int       `yaml:"lod_face_threshold" toml:"lod_face_threshold"`
	LODRatios        []float32 `yaml:"lod_ratios" toml:"lod_ratios"`
	AtomicWrite      bool      `yaml:"atomic_write" toml:"atomic_write"`
}

// ImportConfig holds settings for reading OVO files.
type ImportConfig struct {
	StrictHierarchy bool `yaml:"strict_hierarchy" toml:"strict_hierarchy"`
	AxisCorrection  bool `yaml:"axis_correction" toml:"axis_correction"`
	KeepRoot        bool `yaml:"keep_root" toml:"keep_root"`
	// NameEncoding is the code page of names that are not valid UTF-8.
	NameEncoding string `yaml:"name_encoding" toml:"name_encoding"`
}

// ValidateConfig holds settings for the validate command.
type ValidateConfig struct {
	Workers int `yaml:"workers" toml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			IncludeMeshes:    true,
			IncludeLights:    true,
			RootPolicy:       scene.RootAlways.String(),
			UVPrecision:      5,
			LODFaceThreshold: 300000,
			LODRatios:        []float32{1.0, 0.8, 0.5, 0.3, 0.1},
			AtomicWrite:      true,
		},
		Import: ImportConfig{
			StrictHierarchy: false,
			AxisCorrection:  true,
			KeepRoot:        false,
			NameEncoding:    encoding.DefaultLegacy,
		},
		Validate: ValidateConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Check reports the first invalid setting.
func (c *Config) Check() error {
	if _, err := scene.ParseRootPolicy(c.Export.RootPolicy); err != nil {
		return fmt.Errorf("export.root_policy: %w", err)
	}
	if c.Export.UVPrecision < 1 || c.Export.UVPrecision > 9 {
		return fmt.Errorf("export.uv_precision must be between 1 and 9, got %d", c.Export.UVPrecision)
	}
	if c.Export.LODFaceThreshold < 0 {
		return fmt.Errorf("export.lod_face_threshold must not be negative, got %d", c.Export.LODFaceThreshold)
	}
	for i, r := range c.Export.LODRatios {
		if r <= 0 || r > 1 {
			return fmt.Errorf("export.lod_ratios[%d] must be in (0, 1], got %v", i, r)
		}
	}
	if _, err := encoding.Lookup(c.Import.NameEncoding); err != nil {
		return fmt.Errorf("import.name_encoding: %w", err)
	}
	if c.Validate.Workers < 1 {
		return fmt.Errorf("validate.workers must be at least 1, got %d", c.Validate.Workers)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
