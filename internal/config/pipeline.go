package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"panelcomp/internal/spec"
)

const SupportedSchema = "v1"

// LoadPipelineSpec parses a composition YAML, validates schema_version, and
// returns the parsed spec and an absolute path to the source data (if set).
func LoadPipelineSpec(path string) (spec.File, string, error) {
	var cfg spec.File
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, "", err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, "", err
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = SupportedSchema
	}
	if cfg.SchemaVersion != SupportedSchema {
		return cfg, "", fmt.Errorf("pipeline schema_version %q not supported (want %q)", cfg.SchemaVersion, SupportedSchema)
	}
	if len(cfg.Steps) == 0 {
		return cfg, "", fmt.Errorf("pipeline %s: no steps", path)
	}
	dataPath := cfg.Source.Path
	if dataPath != "" && !filepath.IsAbs(dataPath) {
		dataPath = filepath.Join(filepath.Dir(path), dataPath)
	}
	return cfg, dataPath, nil
}
