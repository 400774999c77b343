// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes content to a temp config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

inference:
  api_key: "test-key"
  model: "gemini-2.0-flash"
  timeout: "20s"

storage:
  uri: "mongodb://localhost:27017"
  database: "valiance_ai_db"
  max_pool_size: 5
  max_conn_idle: "60s"
  connect_timeout: "5s"
  health_timeout: "1s"

tuning:
  path: "tuning_data.json"
  prompt_examples: 10

sync:
  max_conversations: 10

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "test-key", cfg.Inference.APIKey)
	assert.Equal(t, 20*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Storage.URI)
	assert.Equal(t, uint64(5), cfg.Storage.MaxPoolSize)
	assert.Equal(t, time.Second, cfg.Storage.HealthTimeout)
	assert.Equal(t, 10, cfg.Tuning.PromptExamples)
	assert.Equal(t, 10, cfg.Sync.MaxConversations)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"

inference:
  api_key: "test-key"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.Inference.Model)
	assert.Equal(t, DefaultInferenceTimeout, cfg.Inference.Timeout)
	assert.Equal(t, DefaultDatabase, cfg.Storage.Database)
	assert.Equal(t, uint64(DefaultMaxPoolSize), cfg.Storage.MaxPoolSize)
	assert.Equal(t, DefaultHealthTimeout, cfg.Storage.HealthTimeout)
	assert.Equal(t, DefaultTuningPath, cfg.Tuning.Path)
	assert.Equal(t, DefaultPromptExamples, cfg.Tuning.PromptExamples)
	assert.Equal(t, DefaultMaxConversations, cfg.Sync.MaxConversations)
	assert.Equal(t, DefaultQueueSize, cfg.Writer.QueueSize)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_VALIANCE_KEY", "expanded-secret")

	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"

inference:
  api_key: "${TEST_VALIANCE_KEY}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-secret", cfg.Inference.APIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("MONGO_URI", "mongodb://env-host:27017")

	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Inference.APIKey)
	assert.Equal(t, "mongodb://env-host:27017", cfg.Storage.URI)
}

func TestLoad_MissingHTTPAddr(t *testing.T) {
	path := writeConfig(t, `
inference:
  api_key: "test-key"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http_addr")
}

func TestLoad_MissingAPIKey(t *testing.T) {
	// Ensure the env fallback does not mask the failure
	t.Setenv("GEMINI_API_KEY", "")

	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoad_TailscaleRequiresHostname(t *testing.T) {
	path := writeConfig(t, `
tailscale:
  enabled: true

inference:
  api_key: "test-key"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hostname")
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"

inference:
  api_key: "test-key"
  timeout: "twenty seconds"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inference.timeout")
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
