// Package config loads the settings of a batch replay from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sarchlab/pagesim/tracing"
)

// Names of the environment variables Load reads.
const (
	EnvLogDir           = "PAGESIM_LOG_DIR"
	EnvDB               = "PAGESIM_DB"
	EnvTraceCSV         = "PAGESIM_TRACE_CSV"
	EnvTraceCompression = "PAGESIM_TRACE_COMPRESSION"
	EnvParallel         = "PAGESIM_PARALLEL"
	EnvMonitorPort      = "PAGESIM_MONITOR_PORT"
)

// Config holds the settings of a batch replay.
type Config struct {
	// LogDir is where the timestamped log file goes.
	LogDir string `json:"log_dir"`

	// DBPath, if not empty, is the SQLite file replays are recorded into,
	// without the .sqlite3 suffix.
	DBPath string `json:"db_path"`

	// TraceCSV, if not empty, is the CSV file every reference is written
	// into, without the .csv suffix.
	TraceCSV string `json:"trace_csv"`

	// TraceCompression is none, snappy or lz4.
	TraceCompression string `json:"trace_compression"`

	// Parallel replays the request files concurrently.
	Parallel bool `json:"parallel"`

	// MonitorPort is the port the monitor listens on. 0 picks a free port.
	MonitorPort int `json:"monitor_port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogDir:           "logs",
		TraceCompression: "none",
	}
}

// Load reads the configuration from the environment. Variables in envFile
// are loaded first without overriding those already set. An empty envFile
// loads ".env" if there is one.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil &&
		!errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	return FromEnv()
}

// FromEnv builds a configuration from the defaults overridden by the
// environment variables that are set.
func FromEnv() (*Config, error) {
	c := DefaultConfig()

	if v, ok := os.LookupEnv(EnvLogDir); ok {
		c.LogDir = v
	}

	if v, ok := os.LookupEnv(EnvDB); ok {
		c.DBPath = v
	}

	if v, ok := os.LookupEnv(EnvTraceCSV); ok {
		c.TraceCSV = v
	}

	if v, ok := os.LookupEnv(EnvTraceCompression); ok {
		c.TraceCompression = v
	}

	if v, ok := os.LookupEnv(EnvParallel); ok {
		parallel, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvParallel, err)
		}

		c.Parallel = parallel
	}

	if v, ok := os.LookupEnv(EnvMonitorPort); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvMonitorPort, err)
		}

		c.MonitorPort = port
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// Compression returns the parsed trace compression.
func (c *Config) Compression() tracing.Compression {
	compression, err := tracing.ParseCompression(c.TraceCompression)
	if err != nil {
		panic(err)
	}

	return compression
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.LogDir == "" {
		return errors.New("log directory must not be empty")
	}

	if _, err := tracing.ParseCompression(c.TraceCompression); err != nil {
		return err
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		return fmt.Errorf("monitor port %d out of range", c.MonitorPort)
	}

	return nil
}
