// Package logging provides categorized structured logging for lulu-c on top of zap.
// Until Init is called every logger is a no-op, so library packages can
// log unconditionally and stay silent in tests.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // CLI startup, config resolution
	CategoryModel    Category = "model"    // Model loading and colony selection
	CategoryExpand   Category = "expand"   // Wildcard normalization and expansion
	CategorySymbols  Category = "symbols"  // Alphabet canonicalization
	CategoryEncode   Category = "encode"   // Rule, program and multiset encoding
	CategoryAssemble Category = "assemble" // Structure assembly and feature derivation
	CategoryEmit     Category = "emit"     // Artifact rendering and writing
	CategoryWatch    Category = "watch"    // Model file watching
)

// Categories returns every category in pipeline order.
func Categories() []Category {
	return []Category{
		CategoryBoot, CategoryModel, CategoryExpand, CategorySymbols,
		CategoryEncode, CategoryAssemble, CategoryEmit, CategoryWatch,
	}
}

// Options configures the process-wide logger.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is "json" for production-style output, anything else for console output.
	Format string
	// Categories disables individual categories when set to false; missing entries are enabled.
	Categories map[string]bool
}

var (
	mu       sync.RWMutex
	base     = zap.NewNop()
	disabled = map[Category]bool{}
)

// ParseLevel maps a level name to a zap level. Empty means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// Init builds the process-wide logger. Output goes to stderr so generated
// artifacts and command output on stdout stay clean.
func Init(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	var cfg zap.Config
	if opts.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	off := make(map[Category]bool)
	for name, enabled := range opts.Categories {
		if !enabled {
			off[Category(name)] = true
		}
	}
	install(logger, off)
	return nil
}

// install swaps the process-wide logger. A nil logger restores the no-op default.
func install(logger *zap.Logger, off map[Category]bool) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if off == nil {
		off = map[Category]bool{}
	}
	mu.Lock()
	base = logger
	disabled = off
	mu.Unlock()
}

// Logger returns the process-wide zap logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Get returns a sugared logger named after the category, or a no-op logger when
// the category is disabled.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if disabled[category] {
		return zap.NewNop().Sugar()
	}
	return base.Named(string(category)).Sugar()
}

// Sync flushes buffered entries. Errors from syncing stderr are ignored.
func Sync() {
	_ = Logger().Sync()
}
