package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vaultwrap/internal/ir"
)

// DefaultProgramSeed seeds the program address when none is configured.
const DefaultProgramSeed = "program/vaultwrap"

// Config is the optional YAML configuration file. Flags override it.
type Config struct {
	// ProgramID is the base58 program address. Empty selects the
	// address derived from DefaultProgramSeed.
	ProgramID string `yaml:"program_id"`

	// Database is the SQLite database path.
	Database string `yaml:"database"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Database: "vaultwrap.db",
		LogLevel: "info",
	}
}

// LoadConfig reads path over the defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := cfg.Level(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Program returns the configured program address.
func (c Config) Program() (ir.Address, error) {
	if c.ProgramID == "" {
		return ir.AddressFromSeed(DefaultProgramSeed), nil
	}
	addr, err := ir.ParseAddress(c.ProgramID)
	if err != nil {
		return ir.Address{}, fmt.Errorf("program id: %w", err)
	}
	return addr, nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
}
