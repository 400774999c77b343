// ABOUTME: Configuration loading and parsing for valiance-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete valiance-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Inference InferenceConfig `yaml:"inference"`
	Storage   StorageConfig   `yaml:"storage"`
	Tuning    TuningConfig    `yaml:"tuning"`
	Sync      SyncConfig      `yaml:"sync"`
	Writer    WriterConfig    `yaml:"writer"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
	HTTPS     bool   `yaml:"https"`  // Serve with Tailscale-provisioned certs
	Funnel    bool   `yaml:"funnel"` // Enable public Funnel (implies HTTPS)
}

// InferenceConfig holds the generation provider configuration.
// Timeout is a hard wall-clock deadline on a single generation call.
type InferenceConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// StorageConfig holds the document store configuration.
// The store is optional: an empty URI runs the gateway in local-only mode.
type StorageConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	MaxPoolSize    uint64        `yaml:"max_pool_size"`
	MaxConnIdle    time.Duration `yaml:"-"`
	ConnectTimeout time.Duration `yaml:"-"`
	HealthTimeout  time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	MaxConnIdleRaw    string `yaml:"max_conn_idle"`
	ConnectTimeoutRaw string `yaml:"connect_timeout"`
	HealthTimeoutRaw  string `yaml:"health_timeout"`
}

// TuningConfig holds tuning example storage and prompt inclusion settings
type TuningConfig struct {
	Path string `yaml:"path"`

	// PromptExamples caps how many stored examples are included in any
	// single prompt, independent of how many the file holds.
	PromptExamples int `yaml:"prompt_examples"`
}

// SyncConfig holds conversation sync limits
type SyncConfig struct {
	MaxConversations int `yaml:"max_conversations"`
}

// WriterConfig holds the background persistence writer settings
type WriterConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults observed in the original deployment. The caps and the 20s
// deadline are tunables, not business rules.
const (
	DefaultModel            = "gemini-2.0-flash"
	DefaultDatabase         = "valiance_ai_db"
	DefaultTuningPath       = "tuning_data.json"
	DefaultPromptExamples   = 10
	DefaultMaxConversations = 10
	DefaultQueueSize        = 64
	DefaultMaxPoolSize      = 5

	DefaultInferenceTimeout = 20 * time.Second
	DefaultMaxConnIdle      = 60 * time.Second
	DefaultConnectTimeout   = 5 * time.Second
	DefaultHealthTimeout    = 1 * time.Second
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in zero-valued fields with default settings.
func (c *Config) applyDefaults() {
	if c.Inference.Model == "" {
		c.Inference.Model = DefaultModel
	}
	if c.Inference.Timeout == 0 {
		c.Inference.Timeout = DefaultInferenceTimeout
	}
	if c.Storage.Database == "" {
		c.Storage.Database = DefaultDatabase
	}
	if c.Storage.MaxPoolSize == 0 {
		c.Storage.MaxPoolSize = DefaultMaxPoolSize
	}
	if c.Storage.MaxConnIdle == 0 {
		c.Storage.MaxConnIdle = DefaultMaxConnIdle
	}
	if c.Storage.ConnectTimeout == 0 {
		c.Storage.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Storage.HealthTimeout == 0 {
		c.Storage.HealthTimeout = DefaultHealthTimeout
	}
	if c.Tuning.Path == "" {
		c.Tuning.Path = DefaultTuningPath
	}
	if c.Tuning.PromptExamples == 0 {
		c.Tuning.PromptExamples = DefaultPromptExamples
	}
	if c.Sync.MaxConversations == 0 {
		c.Sync.MaxConversations = DefaultMaxConversations
	}
	if c.Writer.QueueSize == 0 {
		c.Writer.QueueSize = DefaultQueueSize
	}
}

// applyEnvOverrides honors the environment variables the original
// deployment read from its .env file, so those keep working.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && c.Inference.APIKey == "" {
		c.Inference.APIKey = key
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" && c.Storage.URI == "" {
		c.Storage.URI = uri
	}
	if path := os.Getenv("VALIANCE_TUNING_PATH"); path != "" {
		c.Tuning.Path = path
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// The HTTP address is required unless Tailscale provides the listener
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Inference.APIKey == "" {
		return fmt.Errorf("inference.api_key is required (or set GEMINI_API_KEY)")
	}

	if c.Tuning.PromptExamples < 0 {
		return fmt.Errorf("tuning.prompt_examples must not be negative")
	}
	if c.Sync.MaxConversations < 1 {
		return fmt.Errorf("sync.max_conversations must be positive")
	}
	if c.Writer.QueueSize < 1 {
		return fmt.Errorf("writer.queue_size must be positive")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Inference.TimeoutRaw != "" {
		cfg.Inference.Timeout, err = time.ParseDuration(cfg.Inference.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing inference.timeout %q: %w", cfg.Inference.TimeoutRaw, err)
		}
	}

	if cfg.Storage.MaxConnIdleRaw != "" {
		cfg.Storage.MaxConnIdle, err = time.ParseDuration(cfg.Storage.MaxConnIdleRaw)
		if err != nil {
			return fmt.Errorf("parsing storage.max_conn_idle %q: %w", cfg.Storage.MaxConnIdleRaw, err)
		}
	}

	if cfg.Storage.ConnectTimeoutRaw != "" {
		cfg.Storage.ConnectTimeout, err = time.ParseDuration(cfg.Storage.ConnectTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing storage.connect_timeout %q: %w", cfg.Storage.ConnectTimeoutRaw, err)
		}
	}

	if cfg.Storage.HealthTimeoutRaw != "" {
		cfg.Storage.HealthTimeout, err = time.ParseDuration(cfg.Storage.HealthTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing storage.health_timeout %q: %w", cfg.Storage.HealthTimeoutRaw, err)
		}
	}

	return nil
}
