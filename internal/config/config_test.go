package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Export.IncludeMeshes || !cfg.Export.IncludeLights {
		t.Error("expected meshes and lights to be exported by default")
	}
	if cfg.Export.RootPolicy != "always" {
		t.Errorf("expected root policy 'always', got %s", cfg.Export.RootPolicy)
	}
	if cfg.Export.UVPrecision != 5 {
		t.Errorf("expected uv precision 5, got %d", cfg.Export.UVPrecision)
	}
	if cfg.Export.LODFaceThreshold != 300000 {
		t.Errorf("expected lod threshold 300000, got %d", cfg.Export.LODFaceThreshold)
	}
	if !reflect.DeepEqual(cfg.Export.LODRatios, []float32{1.0, 0.8, 0.5, 0.3, 0.1}) {
		t.Errorf("unexpected lod ratios %v", cfg.Export.LODRatios)
	}
	if !cfg.Export.AtomicWrite {
		t.Error("expected atomic writes by default")
	}

	if cfg.Import.StrictHierarchy {
		t.Error("expected lenient hierarchy by default")
	}
	if !cfg.Import.AxisCorrection {
		t.Error("expected axis correction by default")
	}
	if cfg.Import.NameEncoding != "windows-1252" {
		t.Errorf("expected windows-1252 name encoding, got %s", cfg.Import.NameEncoding)
	}

	if cfg.Validate.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Validate.Workers)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Check(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ovotool.yaml")

	yamlContent := `
export:
  include_lights: false
  root_policy: forest
  uv_precision: 4
  lod_face_threshold: 1000
  lod_ratios: [1.0, 0.5]

import:
  strict_hierarchy: true

validate:
  workers: 8

logging:
  level: "debug"
  log_file: "ovotool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Export.IncludeLights {
		t.Error("expected include_lights false")
	}
	if !cfg.Export.IncludeMeshes {
		t.Error("include_meshes should keep its default")
	}
	if cfg.Export.RootPolicy != "forest" {
		t.Errorf("expected root policy forest, got %s", cfg.Export.RootPolicy)
	}
	if cfg.Export.UVPrecision != 4 {
		t.Errorf("expected uv precision 4, got %d", cfg.Export.UVPrecision)
	}
	if !reflect.DeepEqual(cfg.Export.LODRatios, []float32{1.0, 0.5}) {
		t.Errorf("expected ratios [1 0.5], got %v", cfg.Export.LODRatios)
	}
	if !cfg.Import.StrictHierarchy {
		t.Error("expected strict hierarchy")
	}
	if !cfg.Import.AxisCorrection {
		t.Error("axis_correction should keep its default")
	}
	if cfg.Validate.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Validate.Workers)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "ovotool.log" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadFromTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "ovotool.toml")

	tomlContent := `
[export]
include_meshes = false
lod_ratios = [1.0, 0.25]

[validate]
workers = 2
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Export.IncludeMeshes {
		t.Error("expected include_meshes false")
	}
	if !reflect.DeepEqual(cfg.Export.LODRatios, []float32{1.0, 0.25}) {
		t.Errorf("expected ratios [1 0.25], got %v", cfg.Export.LODRatios)
	}
	if cfg.Validate.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Validate.Workers)
	}
	if cfg.Export.RootPolicy != "always" {
		t.Errorf("root policy should keep its default, got %s", cfg.Export.RootPolicy)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("export: [not, a, map"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath, Overrides{}); err == nil {
		t.Error("expected error for malformed YAML")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), Overrides{}); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "ovotool.yaml")
	content := "logging:\n  level: warn\nvalidate:\n  workers: 3\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath, Overrides{Debug: true, LogFile: "run.log", Workers: 16, Strict: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("--debug should win over the file, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "run.log" {
		t.Errorf("expected log file override, got %s", cfg.Logging.LogFile)
	}
	if cfg.Validate.Workers != 16 {
		t.Errorf("expected 16 workers, got %d", cfg.Validate.Workers)
	}
	if !cfg.Import.StrictHierarchy {
		t.Error("expected strict override")
	}

	cfg, err = Load(configPath, Overrides{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "warn" || cfg.Validate.Workers != 3 {
		t.Errorf("file values lost without overrides: %+v %+v", cfg.Logging, cfg.Validate)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"root policy", func(c *Config) { c.Export.RootPolicy = "sometimes" }, "root_policy"},
		{"precision low", func(c *Config) { c.Export.UVPrecision = 0 }, "uv_precision"},
		{"precision high", func(c *Config) { c.Export.UVPrecision = 12 }, "uv_precision"},
		{"threshold", func(c *Config) { c.Export.LODFaceThreshold = -1 }, "lod_face_threshold"},
		{"ratio", func(c *Config) { c.Export.LODRatios = []float32{1, 1.5} }, "lod_ratios[1]"},
		{"name encoding", func(c *Config) { c.Import.NameEncoding = "ebcdic" }, "name_encoding"},
		{"workers", func(c *Config) { c.Validate.Workers = 0 }, "workers"},
		{"level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Check()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should name %s", err, tt.field)
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "nested", name)

			cfg := Default()
			cfg.Export.RootPolicy = "forest"
			cfg.Validate.Workers = 7
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo failed: %v", err)
			}

			loaded := Default()
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("failed to reload: %v", err)
			}
			if !reflect.DeepEqual(cfg, loaded) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir := ConfigDir()
	if dir == "" {
		t.Fatal("ConfigDir returned empty string")
	}
	if !strings.Contains(strings.ToLower(dir), "ovotool") {
		t.Errorf("config dir %s should mention ovotool", dir)
	}
}
