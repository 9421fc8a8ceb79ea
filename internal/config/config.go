package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MaxRobotID is the largest robot identity the runtime can hold (uint16_t).
const MaxRobotID = 65535

// UnsetMinID marks a min_id that must still come from a flag or the environment.
// A robot_count of 0 is unset the same way.
const UnsetMinID = -1

// Config holds all lulu-c configuration.
type Config struct {
	// Generation parameters
	Generator GeneratorConfig `yaml:"generator"`

	// Feature derivation
	Features FeaturesConfig `yaml:"features"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GeneratorConfig holds the generation parameters. Command line flags override them.
type GeneratorConfig struct {
	RobotCount    int    `yaml:"robot_count"`
	MinID         int    `yaml:"min_id"`
	OutputPrefix  string `yaml:"output_prefix"`  // path of the generated units without extension
	HeaderInclude string `yaml:"header_include"` // runtime header included by the declaration unit
	EmitSimNames  bool   `yaml:"emit_sim_names"` // emit the PCOL_SIM name tables
}

// FeaturesConfig configures feature flag derivation.
type FeaturesConfig struct {
	// PolicyPath replaces the built-in Mangle feature policy when set.
	PolicyPath string `yaml:"policy_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			RobotCount:    0,
			MinID:         UnsetMinID,
			OutputPrefix:  "lulu_instance",
			HeaderInclude: "lulu.h",
			EmitSimNames:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileHeader documents the unset sentinels at the top of saved files.
const fileHeader = `# lulu-c configuration
# generator.robot_count 0 and generator.min_id -1 are unset: pass --robots and
# --min-id, or set LULU_ROBOT_COUNT and LULU_MIN_ID.
`

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LULU_ROBOT_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LULU_ROBOT_COUNT: %w", err)
		}
		c.Generator.RobotCount = n
	}
	if v := os.Getenv("LULU_MIN_ID"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LULU_MIN_ID: %w", err)
		}
		c.Generator.MinID = n
	}
	if v := os.Getenv("LULU_OUTPUT_PREFIX"); v != "" {
		c.Generator.OutputPrefix = v
	}
	if v := os.Getenv("LULU_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LULU_FEATURE_POLICY"); v != "" {
		c.Features.PolicyPath = v
	}
	return nil
}

// Validate validates the configuration. Unset robot_count and min_id pass;
// they are required later, once flags have been applied.
func (c *Config) Validate() error {
	g := c.Generator
	if g.RobotCount < 0 || g.RobotCount > MaxRobotID {
		return fmt.Errorf("robot_count must be in [1, %d] or 0 for unset, got %d", MaxRobotID, g.RobotCount)
	}
	if g.MinID < UnsetMinID || g.MinID > MaxRobotID {
		return fmt.Errorf("min_id must be in [0, %d] or %d for unset, got %d", MaxRobotID, UnsetMinID, g.MinID)
	}
	if g.RobotCount > 0 && g.MinID >= 0 {
		if last := g.MinID + g.RobotCount - 1; last > MaxRobotID {
			return fmt.Errorf("robot identities %d..%d exceed %d", g.MinID, last, MaxRobotID)
		}
	}
	if g.OutputPrefix == "" {
		return fmt.Errorf("output_prefix is empty")
	}
	if g.HeaderInclude == "" {
		return fmt.Errorf("header_include is empty")
	}
	return c.Logging.Validate()
}
