package config

import (
	"fmt"

	"github.com/andrei91ro/lulu-c/internal/logging"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	Format     string          `yaml:"format"`     // json, text
	Categories map[string]bool `yaml:"categories"` // Per-category toggles, missing entries are enabled
}

// IsCategoryEnabled returns whether logging is enabled for a category.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// Options converts the configuration for logging.Init, resolving every
// category through IsCategoryEnabled.
func (c *LoggingConfig) Options() logging.Options {
	cats := make(map[string]bool)
	for _, cat := range logging.Categories() {
		cats[string(cat)] = c.IsCategoryEnabled(string(cat))
	}
	return logging.Options{Level: c.Level, Format: c.Format, Categories: cats}
}

// Validate checks level, format and category names.
func (c *LoggingConfig) Validate() error {
	if _, err := logging.ParseLevel(c.Level); err != nil {
		return err
	}
	known := make(map[string]bool)
	for _, cat := range logging.Categories() {
		known[string(cat)] = true
	}
	for name := range c.Categories {
		if !known[name] {
			return fmt.Errorf("unknown log category: %s", name)
		}
	}
	switch c.Format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Format)
	}
}
