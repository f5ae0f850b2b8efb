// Package logging provides config-driven categorized logging for lexive.
// Every category is a named child of one root zap logger. Until Initialize
// is called all categories are no-ops, so library packages stay silent in
// tests.
package logging

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lexive/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Boot/initialization
	CategoryLoader   Category = "loader"   // CSV catalog loading
	CategoryCompiler Category = "compiler" // Card code diagnostics
	CategoryLookup   Category = "lookup"   // Name matching
	CategoryStore    Category = "store"    // Search index
	CategoryWatch    Category = "watch"    // Hot reload
	CategoryBot      Category = "bot"      // Command dispatch
	CategoryRandom   Category = "random"   // Battle randomizer
)

// AllCategories lists every category in a stable order.
var AllCategories = []Category{
	CategoryBoot, CategoryLoader, CategoryCompiler, CategoryLookup,
	CategoryStore, CategoryWatch, CategoryBot, CategoryRandom,
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	cfg     config.LoggingConfig
	loggers = make(map[Category]*zap.Logger)
	closeFn func()
)

// Initialize builds the root logger from configuration. It may be called
// again to reconfigure; previously handed out loggers keep the old core.
func Initialize(lc config.LoggingConfig) error {
	level := zapcore.InfoLevel
	if lc.Level != "" {
		l, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
		level = l
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch lc.Format {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "", "console", "text":
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return fmt.Errorf("invalid log format %q", lc.Format)
	}

	sink := zapcore.Lock(os.Stderr)
	var closer func()
	if lc.File != "" {
		ws, c, err := zap.Open(lc.File)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		sink, closer = ws, c
	}

	logger := zap.New(zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(level)))
	InitializeWith(logger, lc)

	mu.Lock()
	closeFn = closer
	mu.Unlock()

	Get(CategoryBoot).Info("logging initialized",
		zap.String("level", level.String()),
		zap.String("format", lc.Format),
		zap.String("file", lc.File))
	return nil
}

// InitializeWith installs an already built root logger. Commands and tests
// use it to route categories through their own logger.
func InitializeWith(logger *zap.Logger, lc config.LoggingConfig) {
	mu.Lock()
	defer mu.Unlock()
	if closeFn != nil {
		closeFn()
		closeFn = nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	root = logger
	cfg = lc
	loggers = make(map[Category]*zap.Logger)
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) the logger for the given category.
// Returns a no-op logger if the category is disabled.
func Get(category Category) *zap.Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	l := zap.NewNop()
	if cfg.IsCategoryEnabled(string(category)) {
		l = root.Named(string(category))
	}
	loggers[category] = l
	return l
}

// Sync flushes the root logger.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return root.Sync()
}

// Reset restores the silent defaults and closes any log file.
func Reset() {
	InitializeWith(nil, config.LoggingConfig{})
}

// =============================================================================
// CONVENIENCE FUNCTIONS - printf-style logging without getting a logger first
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Sugar().Infof(format, args...)
}

// Loader logs to the loader category
func Loader(format string, args ...interface{}) {
	Get(CategoryLoader).Sugar().Infof(format, args...)
}

// LoaderDebug logs debug to the loader category
func LoaderDebug(format string, args ...interface{}) {
	Get(CategoryLoader).Sugar().Debugf(format, args...)
}

// Watch logs to the watch category
func Watch(format string, args ...interface{}) {
	Get(CategoryWatch).Sugar().Infof(format, args...)
}

// Bot logs to the bot category
func Bot(format string, args ...interface{}) {
	Get(CategoryBot).Sugar().Infof(format, args...)
}

// Store logs to the store category
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Sugar().Infof(format, args...)
}

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Sugar().Debugf(format, args...)
}
