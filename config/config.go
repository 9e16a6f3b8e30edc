// Package config loads the settings of the fiberparty binary.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/idle"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// FrameBudget is the idle time handed to the root per frame.
	FrameBudget time.Duration `yaml:"frame_budget"`
	// YieldThreshold is the remaining budget under which the work loop yields.
	YieldThreshold time.Duration `yaml:"yield_threshold"`
	HookCheck      bool          `yaml:"hook_check"`
	MaxFlush       int           `yaml:"max_flush"`
	LogLevel       string        `yaml:"log_level"`
	// LogFile receives log output instead of stderr when set.
	LogFile string `yaml:"log_file"`
	DBPath  string `yaml:"db_path"`
}

func Default() Config {
	return Config{
		FrameBudget:    idle.DefaultFrame,
		YieldThreshold: fiber.DefaultYieldThreshold,
		MaxFlush:       1000,
		LogLevel:       "info",
		DBPath:         "todos.db",
	}
}

// Load reads a YAML file over the defaults. Unknown fields are rejected so
// typos do not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.FrameBudget <= 0 {
		errs = append(errs, errors.New("frame_budget must be positive"))
	}
	if c.YieldThreshold < 0 {
		errs = append(errs, errors.New("yield_threshold must not be negative"))
	}
	if c.YieldThreshold >= c.FrameBudget {
		errs = append(errs, errors.New("yield_threshold must be below frame_budget"))
	}
	if c.MaxFlush <= 0 {
		errs = append(errs, errors.New("max_flush must be positive"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Logger builds the process logger: development encoding at debug level,
// production JSON otherwise.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if c.LogFile != "" {
		zc.OutputPaths = []string{c.LogFile}
		zc.ErrorOutputPaths = []string{c.LogFile}
	}
	return zc.Build()
}

// RootOptions turns the engine settings into fiber options.
func (c Config) RootOptions(logger *zap.Logger) []fiber.Option {
	return []fiber.Option{
		fiber.WithLogger(logger),
		fiber.WithYieldThreshold(c.YieldThreshold),
		fiber.WithHookCheck(c.HookCheck),
		fiber.WithMaxFlushGenerations(c.MaxFlush),
	}
}
