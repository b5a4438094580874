// Package config provides configuration management for the task-graph
// demo: worker pool sizing, storage backend selection, and logging.
// Environment variables override a JSON file, which overrides built-in
// defaults, trimmed to the knobs pkg/taskdemo and pkg/infrastructure/workers
// actually recognize.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the demo's full configuration.
type Config struct {
	// Workers configures the singleton scheduler.
	Workers WorkersConfig `json:"workers"`

	// Storage selects and configures the block store the demo DAGs write
	// anonymized blocks and retrieve originals through.
	Storage StorageConfig `json:"storage"`

	// Index configures the bleve-backed directory index DAG.
	Index IndexConfig `json:"index"`

	// Logging configures pkg/infrastructure/logging's global logger.
	Logging LoggingConfig `json:"logging"`
}

// WorkersConfig controls pool sizing, the one recognized worker
// configuration option.
type WorkersConfig struct {
	// Count is the number of scheduler goroutines. 0 defaults to
	// runtime.NumCPU() inside workers.Init.
	Count int `json:"count"`
}

// Backend name constants recognized by pkg/taskdemo.NewBlockStore.
const (
	BackendMock     = "mock"
	BackendIPFS     = "ipfs"
	BackendPostgres = "postgres"
)

// StorageConfig selects a block store backend and its connection info.
type StorageConfig struct {
	Backend      string `json:"backend"`
	IPFSEndpoint string `json:"ipfs_endpoint"`
	PostgresDSN  string `json:"postgres_dsn"`
}

// IndexConfig configures where the demo's bleve index lives on disk.
type IndexConfig struct {
	Path string `json:"path"`
}

// LoggingConfig configures the global structured logger.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Output string `json:"output"`
	File   string `json:"file"`
}

// DefaultConfig returns a configuration with sensible defaults: an
// in-memory mock store, worker count left at 0 (hardware parallelism),
// and an index file under the user's home directory.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultIndexPath := filepath.Join(homeDir, ".taskgraph-demo", "index.bleve")

	return &Config{
		Workers: WorkersConfig{Count: 0},
		Storage: StorageConfig{
			Backend:      BackendMock,
			IPFSEndpoint: "localhost:5001",
			PostgresDSN:  "",
		},
		Index: IndexConfig{Path: defaultIndexPath},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "console",
			File:   "",
		},
	}
}

// LoadConfig loads configuration from file with environment variable
// overrides, in that order of precedence over the built-in defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies TASKGRAPH_* environment variable
// overrides on top of whatever defaults/file values are already set.
func (c *Config) applyEnvironmentOverrides() {
	if val := os.Getenv("TASKGRAPH_WORKER_COUNT"); val != "" {
		if count, err := strconv.Atoi(val); err == nil {
			c.Workers.Count = count
		}
	}

	if val := os.Getenv("TASKGRAPH_STORAGE_BACKEND"); val != "" {
		c.Storage.Backend = strings.ToLower(val)
	}
	if val := os.Getenv("TASKGRAPH_IPFS_API"); val != "" {
		c.Storage.IPFSEndpoint = val
	}
	if val := os.Getenv("TASKGRAPH_POSTGRES_DSN"); val != "" {
		c.Storage.PostgresDSN = val
	}

	if val := os.Getenv("TASKGRAPH_INDEX_PATH"); val != "" {
		c.Index.Path = val
	}

	if val := os.Getenv("TASKGRAPH_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv("TASKGRAPH_LOG_FORMAT"); val != "" {
		c.Logging.Format = val
	}
	if val := os.Getenv("TASKGRAPH_LOG_OUTPUT"); val != "" {
		c.Logging.Output = val
	}
	if val := os.Getenv("TASKGRAPH_LOG_FILE"); val != "" {
		c.Logging.File = val
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Workers.Count < 0 {
		return fmt.Errorf("worker count cannot be negative")
	}

	validBackends := map[string]bool{
		BackendMock: true, BackendIPFS: true, BackendPostgres: true,
	}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage backend: %s", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("postgres backend requires storage.postgres_dsn")
	}

	if c.Index.Path == "" {
		return fmt.Errorf("index path cannot be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	validOutputs := map[string]bool{"console": true, "file": true, "both": true}
	if !validOutputs[c.Logging.Output] {
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	return nil
}

// SaveToFile writes the configuration to path as indented JSON, creating
// parent directories as needed.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// GetDefaultConfigPath returns the default configuration file path under
// the user's home directory.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".taskgraph-demo", "config.json"), nil
}
