package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"panelcomp/compose"
)

// EnvPrefix scopes runtime overrides, e.g. PANELCOMP__METRICS__PORT=9200.
const EnvPrefix = "PANELCOMP__"

type LogCfg struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

type MetricsCfg struct {
	Port int `koanf:"port"` // 0 = disabled
}

type GRPCCfg struct {
	Port int `koanf:"port"`
}

type ComposeCfg struct {
	Jobs            int     `koanf:"jobs"`
	SparseThreshold float64 `koanf:"sparse_threshold"`
}

// Runtime holds process settings that are not part of a composition.
type Runtime struct {
	Log     LogCfg     `koanf:"log"`
	Metrics MetricsCfg `koanf:"metrics"`
	GRPC    GRPCCfg    `koanf:"grpc"`
	Compose ComposeCfg `koanf:"compose"`
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// LoadRuntime merges YAML (if present) with env-vars
// (prefix `PANELCOMP__`, delimiter `__`).
func LoadRuntime(path string) (Runtime, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Runtime{}, err
		}
	}
	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return Runtime{}, fmt.Errorf("runtime schema_version %q not supported (want %s)", sv, SupportedSchema)
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return Runtime{}, err
	}

	var cfg Runtime
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	if !k.Exists("compose.sparse_threshold") {
		cfg.Compose.SparseThreshold = compose.DefaultSparseThreshold
	}
	applyDefaults(&cfg)
	if t := cfg.Compose.SparseThreshold; t < 0 || t > 1 {
		return cfg, fmt.Errorf("runtime compose.sparse_threshold %v: %w", t, compose.ErrInvalidThreshold)
	}
	return cfg, nil
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(c *Runtime) {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 50052
	}
	if c.Compose.Jobs == 0 {
		c.Compose.Jobs = 1
	}
}
