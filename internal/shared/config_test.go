package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "fretsheet.db" {
			t.Errorf("expected database path fretsheet.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Spreadsheet.CredentialsFile != "client_secret.json" {
			t.Errorf("expected credentials file client_secret.json, got %s", config.Spreadsheet.CredentialsFile)
		}

		if config.Retry.MaxRetries != 3 {
			t.Errorf("expected 3 max retries, got %d", config.Retry.MaxRetries)
		}

		if config.Retry.BaseDelay() != 2*time.Second {
			t.Errorf("expected 2s base delay, got %v", config.Retry.BaseDelay())
		}

		if config.Retry.WriteInterval() != time.Second {
			t.Errorf("expected 1s write interval, got %v", config.Retry.WriteInterval())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[spreadsheet]
id = "1aBcDeFgHiJkLmNoPqRsTuVwXyZ"
credentials_file = "/secrets/client_secret.json"
token_file = "/secrets/token.json"

[retry]
max_retries = 5
base_delay_ms = 500
write_interval_ms = 250

[recognizer]
api_key = "test_api_key"
model = "claude-sonnet-4-5"
max_tokens = 2048

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 9090
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Spreadsheet.ID != "1aBcDeFgHiJkLmNoPqRsTuVwXyZ" {
			t.Errorf("unexpected spreadsheet id %s", config.Spreadsheet.ID)
		}

		if config.Retry.BaseDelay() != 500*time.Millisecond {
			t.Errorf("expected 500ms base delay, got %v", config.Retry.BaseDelay())
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}
	})
}
