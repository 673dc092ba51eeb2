// Package config loads the service configuration from config.toml, an
// optional environment overlay file and EMOTIONWAVE_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/emotionwave/internal/classifier"
	"github.com/JaimeStill/emotionwave/internal/images"
	"github.com/JaimeStill/emotionwave/pkg/database"
	"github.com/JaimeStill/emotionwave/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvEmotionWaveEnv             = "EMOTIONWAVE_ENV"
	EnvEmotionWaveShutdownTimeout = "EMOTIONWAVE_SHUTDOWN_TIMEOUT"
	EnvEmotionWaveVersion         = "EMOTIONWAVE_VERSION"
)

var databaseEnv = &database.Env{
	Driver:          "EMOTIONWAVE_DB_DRIVER",
	Path:            "EMOTIONWAVE_DB_PATH",
	Host:            "EMOTIONWAVE_DB_HOST",
	Port:            "EMOTIONWAVE_DB_PORT",
	Name:            "EMOTIONWAVE_DB_NAME",
	User:            "EMOTIONWAVE_DB_USER",
	Password:        "EMOTIONWAVE_DB_PASSWORD",
	SSLMode:         "EMOTIONWAVE_DB_SSL_MODE",
	MaxOpenConns:    "EMOTIONWAVE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "EMOTIONWAVE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "EMOTIONWAVE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "EMOTIONWAVE_DB_CONN_TIMEOUT",
	AutoMigrate:     "EMOTIONWAVE_DB_AUTO_MIGRATE",
}

var storageEnv = &storage.Env{
	Provider:         "EMOTIONWAVE_STORAGE_PROVIDER",
	Path:             "EMOTIONWAVE_STORAGE_PATH",
	ContainerName:    "EMOTIONWAVE_STORAGE_CONTAINER_NAME",
	ConnectionString: "EMOTIONWAVE_STORAGE_CONNECTION_STRING",
	AccountURL:       "EMOTIONWAVE_STORAGE_ACCOUNT_URL",
}

var classifierEnv = &classifier.Env{
	Command:           "EMOTIONWAVE_CLASSIFIER_COMMAND",
	Args:              "EMOTIONWAVE_CLASSIFIER_ARGS",
	WorkDir:           "EMOTIONWAVE_CLASSIFIER_WORK_DIR",
	Timeout:           "EMOTIONWAVE_CLASSIFIER_TIMEOUT",
	QueueTimeout:      "EMOTIONWAVE_CLASSIFIER_QUEUE_TIMEOUT",
	WaitDelay:         "EMOTIONWAVE_CLASSIFIER_WAIT_DELAY",
	MaxConcurrent:     "EMOTIONWAVE_CLASSIFIER_MAX_CONCURRENT",
	MaxOutput:         "EMOTIONWAVE_CLASSIFIER_MAX_OUTPUT",
	ExposeDiagnostics: "EMOTIONWAVE_CLASSIFIER_EXPOSE_DIAGNOSTICS",
}

var imagesEnv = &images.Env{
	AllowedTypes: "EMOTIONWAVE_IMAGES_ALLOWED_TYPES",
	MaxDimension: "EMOTIONWAVE_IMAGES_MAX_DIMENSION",
}

// Config is the root configuration for the EmotionWave service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Logging         LoggingConfig     `toml:"logging"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	API             APIConfig         `toml:"api"`
	Classifier      classifier.Config `toml:"classifier"`
	Images          images.Config     `toml:"images"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the EMOTIONWAVE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvEmotionWaveEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadDatabase reads the same sources as Load but finalizes only the
// database section, for tools that never start the service.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	return &cfg.Database, nil
}

func read() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Classifier.Merge(&overlay.Classifier)
	c.Images.Merge(&overlay.Images)
}

// Finalize applies defaults, environment overrides and validation to the
// root config and every sub-config.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(c.Version); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Classifier.Finalize(classifierEnv); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Images.Finalize(imagesEnv); err != nil {
		return fmt.Errorf("images: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvEmotionWaveShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvEmotionWaveVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvEmotionWaveEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
