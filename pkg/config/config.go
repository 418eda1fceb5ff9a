// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/shellgen/pkg/units"
)

// Config holds the settings shared by the shellgen binaries.
type Config struct {
	MeshCells int    // marching-cubes cells along the longest preview axis
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json
	Units     string // internal unit system of the host: feet or mm
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		MeshCells: getEnvAsInt("SHELLGEN_MESH_CELLS", 120),
		LogLevel:  getEnv("SHELLGEN_LOG_LEVEL", "info"),
		LogFormat: getEnv("SHELLGEN_LOG_FORMAT", "text"),
		Units:     getEnv("SHELLGEN_UNITS", "feet"),
	}
}

// Converter returns the unit converter named by Units.
func (c *Config) Converter() (units.Converter, error) {
	return units.ByName(c.Units)
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Logger returns a text or JSON logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: c.Level()}
	switch strings.ToLower(c.LogFormat) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("config: unknown log format %q, expected text or json", c.LogFormat)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
