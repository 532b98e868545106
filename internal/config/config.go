package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cordata-io/renderdoc/internal/fileutil"
	"github.com/cordata-io/renderdoc/internal/hints"
	"github.com/cordata-io/renderdoc/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid configuration value")
)

// Config holds every configuration concern the render service needs,
// nested by concern: browser pool sizing, queue transport, and
// file-mode dispatch each get their own sub-struct.
type Config struct {
	BrowserPool BrowserPoolConfig `yaml:"browserPool"`
	Queue       QueueConfig       `yaml:"queue"`
	FileMode    FileModeConfig    `yaml:"fileMode"`
}

// BrowserPoolConfig configures the browser pool's sizing and lifecycle
// limits.
type BrowserPoolConfig struct {
	MinSize               int           `yaml:"minSize"`
	MaxSize               int           `yaml:"maxSize"`
	AcquireTimeout        time.Duration `yaml:"acquireTimeout"`
	IdleTimeout           time.Duration `yaml:"idleTimeout"`
	MaxRendersPerInstance int           `yaml:"maxRendersPerInstance"`
}

// QueueConfig configures the queue-mode dispatcher's transport wiring.
type QueueConfig struct {
	BootstrapServers     string        `yaml:"bootstrapServers"`
	ConsumerGroupID      string        `yaml:"consumerGroupId"`
	RequestTopic         string        `yaml:"requestTopic"`
	ResultTopic          string        `yaml:"resultTopic"`
	DeadLetterTopic      string        `yaml:"deadLetterTopic"`
	MaxRetries           int           `yaml:"maxRetries"`
	RetryDelay           time.Duration `yaml:"retryDelay"`
	PollTimeout          time.Duration `yaml:"pollTimeout"`
	MaxConcurrentRenders int           `yaml:"maxConcurrentRenders"`
	PdfOutputPath        string        `yaml:"pdfOutputPath"`

	SecurityProtocol string `yaml:"securityProtocol"`
	SaslMechanism    string `yaml:"saslMechanism"`
	SaslUsername     string `yaml:"saslUsername"`
	SaslPassword     string `yaml:"saslPassword"`
}

// FileModeConfig configures the file-mode dispatcher.
type FileModeConfig struct {
	TemplatesRoot string `yaml:"templatesRoot"`
	OutputPath    string `yaml:"outputPath"`
	Concurrency   int    `yaml:"concurrency"`
}

// Validate checks cross-field invariants that a YAML schema can't
// express. Note that "maxConcurrentRenders must not exceed
// browserPool.maxSize" is not one of them — violating it doesn't fail
// the render service, so that invariant only warns the caller via a
// non-fatal hint rather than refusing to load; see IsConcurrencyUnsafe.
func (c *Config) Validate() error {
	if c.BrowserPool.MinSize < 0 {
		return fmt.Errorf("%w: browserPool.minSize must be >= 0", ErrInvalidValue)
	}
	if c.BrowserPool.MaxSize < 0 {
		return fmt.Errorf("%w: browserPool.maxSize must be >= 0", ErrInvalidValue)
	}
	if c.BrowserPool.MinSize > 0 && c.BrowserPool.MaxSize > 0 && c.BrowserPool.MinSize > c.BrowserPool.MaxSize {
		return fmt.Errorf("%w: browserPool.minSize must be <= browserPool.maxSize", ErrInvalidValue)
	}
	if c.Queue.MaxRetries < 0 {
		return fmt.Errorf("%w: queue.maxRetries must be >= 0", ErrInvalidValue)
	}
	if c.FileMode.Concurrency < 0 {
		return fmt.Errorf("%w: fileMode.concurrency must be >= 0", ErrInvalidValue)
	}
	return nil
}

// IsConcurrencyUnsafe reports the invariant violation:
// maxConcurrentRenders exceeding the pool's maxSize degrades to
// POOL_TIMEOUT under load instead of failing config load outright.
func (c *Config) IsConcurrencyUnsafe() bool {
	return c.BrowserPool.MaxSize > 0 && c.Queue.MaxConcurrentRenders > c.BrowserPool.MaxSize
}

// DefaultConfig returns a Config with every field set to its default
// value.
func DefaultConfig() *Config {
	return &Config{
		BrowserPool: BrowserPoolConfig{
			MinSize:               1,
			MaxSize:               4,
			AcquireTimeout:        30 * time.Second,
			IdleTimeout:           5 * time.Minute,
			MaxRendersPerInstance: 100,
		},
		Queue: QueueConfig{
			MaxRetries:           5,
			RetryDelay:           5 * time.Second,
			PollTimeout:          10 * time.Second,
			MaxConcurrentRenders: 4,
		},
		FileMode: FileModeConfig{
			Concurrency: 4,
		},
	}
}

// LoadConfig loads configuration from a file path or config name,
// applying DefaultConfig's fallbacks to any field the file leaves at
// its zero value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := *DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard
// locations, trying .yaml then .yml in the current directory and the
// user config directory.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "renderdoc", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s%s", ErrConfigNotFound, strings.Join(triedPaths, ", "), hints.ForConfigNotFound(triedPaths))
}
