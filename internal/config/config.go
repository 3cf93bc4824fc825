// Package config collects the settings of the rect-segmenter command from the
// environment. Command-line flags override what is read here.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	CodecOpenCV = "opencv"
	CodecNative = "native"
)

type Config struct {
	// Workers is the number of search goroutines; 0 means GOMAXPROCS.
	Workers int
	// Codec selects the image reader and writer.
	Codec string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// MemoryLimit caps the transient buffers in bytes; 0 means the
	// allocator default.
	MemoryLimit int64
}

func Default() Config {
	return Config{
		Codec:    CodecOpenCV,
		LogLevel: "info",
	}
}

// FromEnv starts from Default and applies RECTSEG_WORKERS, RECTSEG_CODEC,
// LOG_LEVEL and RECTSEG_MEMORY_LIMIT when set.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup("RECTSEG_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid RECTSEG_WORKERS %q: %w", v, err)
		}
		cfg.Workers = n
	}

	if v, ok := lookup("RECTSEG_CODEC"); ok && v != "" {
		cfg.Codec = strings.ToLower(v)
	}

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v, ok := lookup("RECTSEG_MEMORY_LIMIT"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid RECTSEG_MEMORY_LIMIT %q: %w", v, err)
		}
		cfg.MemoryLimit = n
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got: %d", c.Workers)
	}

	switch c.Codec {
	case CodecOpenCV, CodecNative:
	default:
		return fmt.Errorf("unknown codec: %s", c.Codec)
	}

	if _, err := c.ZerologLevel(); err != nil {
		return err
	}

	if c.MemoryLimit < 0 {
		return fmt.Errorf("memory limit must be >= 0, got: %d", c.MemoryLimit)
	}

	return nil
}

func (c Config) ZerologLevel() (zerolog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
}
