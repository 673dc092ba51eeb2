package classifier

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/emotionwave/pkg/formatting"
)

// Config describes how to launch the classifier process and how many may
// run at once. The image path is appended after Args.
type Config struct {
	Command           string   `toml:"command"`
	Args              []string `toml:"args"`
	WorkDir           string   `toml:"work_dir"`
	Timeout           string   `toml:"timeout"`
	QueueTimeout      string   `toml:"queue_timeout"`
	WaitDelay         string   `toml:"wait_delay"`
	MaxConcurrent     int      `toml:"max_concurrent"`
	MaxOutput         string   `toml:"max_output"`
	ExposeDiagnostics bool     `toml:"expose_diagnostics"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Command           string
	Args              string
	WorkDir           string
	Timeout           string
	QueueTimeout      string
	WaitDelay         string
	MaxConcurrent     string
	MaxOutput         string
	ExposeDiagnostics string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// QueueTimeoutDuration returns QueueTimeout as a time.Duration.
func (c *Config) QueueTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.QueueTimeout)
	return d
}

// WaitDelayDuration returns WaitDelay as a time.Duration.
func (c *Config) WaitDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.WaitDelay)
	return d
}

// MaxOutputBytes returns MaxOutput in bytes.
func (c *Config) MaxOutputBytes() int64 {
	n, err := formatting.ParseBytes(c.MaxOutput)
	if err != nil {
		return 1 << 20
	}
	return n
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. ExposeDiagnostics only turns on.
func (c *Config) Merge(overlay *Config) {
	if overlay.Command != "" {
		c.Command = overlay.Command
	}
	if overlay.Args != nil {
		c.Args = overlay.Args
	}
	if overlay.WorkDir != "" {
		c.WorkDir = overlay.WorkDir
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.QueueTimeout != "" {
		c.QueueTimeout = overlay.QueueTimeout
	}
	if overlay.WaitDelay != "" {
		c.WaitDelay = overlay.WaitDelay
	}
	if overlay.MaxConcurrent != 0 {
		c.MaxConcurrent = overlay.MaxConcurrent
	}
	if overlay.MaxOutput != "" {
		c.MaxOutput = overlay.MaxOutput
	}
	if overlay.ExposeDiagnostics {
		c.ExposeDiagnostics = true
	}
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
	if c.QueueTimeout == "" {
		c.QueueTimeout = "30s"
	}
	if c.WaitDelay == "" {
		c.WaitDelay = "5s"
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = runtime.NumCPU()
	}
	if c.MaxOutput == "" {
		c.MaxOutput = "1MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Command != "" {
		if v := os.Getenv(env.Command); v != "" {
			c.Command = v
		}
	}
	if env.Args != "" {
		if v := os.Getenv(env.Args); v != "" {
			c.Args = strings.Fields(v)
		}
	}
	if env.WorkDir != "" {
		if v := os.Getenv(env.WorkDir); v != "" {
			c.WorkDir = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.QueueTimeout != "" {
		if v := os.Getenv(env.QueueTimeout); v != "" {
			c.QueueTimeout = v
		}
	}
	if env.WaitDelay != "" {
		if v := os.Getenv(env.WaitDelay); v != "" {
			c.WaitDelay = v
		}
	}
	if env.MaxConcurrent != "" {
		if v := os.Getenv(env.MaxConcurrent); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxConcurrent = n
			}
		}
	}
	if env.MaxOutput != "" {
		if v := os.Getenv(env.MaxOutput); v != "" {
			c.MaxOutput = v
		}
	}
	if env.ExposeDiagnostics != "" {
		if v := os.Getenv(env.ExposeDiagnostics); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.ExposeDiagnostics = b
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Command == "" {
		return fmt.Errorf("command required")
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be positive")
	}
	for name, value := range map[string]string{
		"timeout":       c.Timeout,
		"queue_timeout": c.QueueTimeout,
		"wait_delay":    c.WaitDelay,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if n, err := formatting.ParseBytes(c.MaxOutput); err != nil {
		return fmt.Errorf("invalid max_output: %w", err)
	} else if n <= 0 {
		return fmt.Errorf("max_output must be positive")
	}
	return nil
}
