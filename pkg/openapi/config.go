package openapi

import (
	"errors"
	"os"
	"strings"
)

// Config holds the info block of the generated document.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	Version     string `toml:"version"`
}

// ConfigEnv names the environment variables that override Config.
type ConfigEnv struct {
	Title       string
	Description string
	Version     string
}

// Finalize applies defaults and environment overrides, then rejects a
// title or version that is only whitespace.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for _, f := range []struct{ dst, src *string }{
		{&c.Title, &overlay.Title},
		{&c.Description, &overlay.Description},
		{&c.Version, &overlay.Version},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
}

// NewSpec starts a document from the configured info block. serverURL
// is added as the single server entry when non-empty.
func (c *Config) NewSpec(serverURL string) *Spec {
	spec := NewSpec(c.Title, c.Version)
	spec.SetDescription(c.Description)
	if serverURL != "" {
		spec.AddServer(serverURL)
	}
	return spec
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "EmotionWave API"
	}
	if c.Description == "" {
		c.Description = "Facial emotion analysis of uploaded images with a persisted analysis history."
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	for _, f := range []struct {
		name   string
		target *string
	}{
		{env.Title, &c.Title},
		{env.Description, &c.Description},
		{env.Version, &c.Version},
	} {
		if f.name == "" {
			continue
		}
		if v := os.Getenv(f.name); v != "" {
			*f.target = v
		}
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("openapi title is blank")
	}
	if strings.TrimSpace(c.Version) == "" {
		return errors.New("openapi version is blank")
	}
	return nil
}
