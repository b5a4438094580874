package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Storage.Backend != BackendMock {
		t.Errorf("Expected default storage backend %s, got %s", BackendMock, config.Storage.Backend)
	}

	if config.Workers.Count != 0 {
		t.Errorf("Expected default worker count 0, got %d", config.Workers.Count)
	}

	if config.Logging.Level != "info" {
		t.Errorf("Expected default log level info, got %s", config.Logging.Level)
	}
}

func TestConfigValidation(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Errorf("Valid config failed validation: %v", err)
	}

	config.Storage.Backend = "nope"
	if err := config.Validate(); err == nil {
		t.Error("Invalid storage backend should fail validation")
	}

	config = DefaultConfig()
	config.Storage.Backend = BackendPostgres
	if err := config.Validate(); err == nil {
		t.Error("Postgres backend without a DSN should fail validation")
	}

	config = DefaultConfig()
	config.Logging.Level = "invalid"
	if err := config.Validate(); err == nil {
		t.Error("Invalid log level should fail validation")
	}

	config = DefaultConfig()
	config.Workers.Count = -1
	if err := config.Validate(); err == nil {
		t.Error("Negative worker count should fail validation")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	os.Setenv("TASKGRAPH_STORAGE_BACKEND", "ipfs")
	os.Setenv("TASKGRAPH_LOG_LEVEL", "debug")
	os.Setenv("TASKGRAPH_WORKER_COUNT", "8")
	defer func() {
		os.Unsetenv("TASKGRAPH_STORAGE_BACKEND")
		os.Unsetenv("TASKGRAPH_LOG_LEVEL")
		os.Unsetenv("TASKGRAPH_WORKER_COUNT")
	}()

	config := DefaultConfig()
	config.applyEnvironmentOverrides()

	if config.Storage.Backend != BackendIPFS {
		t.Errorf("Environment override failed for storage backend, got %s", config.Storage.Backend)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Environment override failed for log level, got %s", config.Logging.Level)
	}
	if config.Workers.Count != 8 {
		t.Errorf("Environment override failed for worker count, got %d", config.Workers.Count)
	}
}

func TestConfigFileOperations(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "taskgraph_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.json")

	config := DefaultConfig()
	config.Storage.IPFSEndpoint = "custom.example.com:5001"

	if err := config.SaveToFile(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedConfig.Storage.IPFSEndpoint != "custom.example.com:5001" {
		t.Errorf("Config not loaded correctly, got %s", loadedConfig.Storage.IPFSEndpoint)
	}
}

func TestLoadNonexistentConfig(t *testing.T) {
	config, err := LoadConfig("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Loading non-existent config should not error: %v", err)
	}

	if config.Storage.Backend != BackendMock {
		t.Errorf("Non-existent config should use defaults, got %s", config.Storage.Backend)
	}
}
