// Package config loads settings from a config file, TRADUTOR_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/tradutor/internal/catalog"
	"github.com/valpere/tradutor/internal/coordinator"
	"github.com/valpere/tradutor/internal/logging"
	"github.com/valpere/tradutor/internal/postprocess"
	"github.com/valpere/tradutor/internal/translator"
)

const (
	EnvPrefix = "TRADUTOR"
	// AutoSource asks the one-shot command to detect the source language.
	AutoSource = "auto"
)

type MyMemoryConfig struct {
	Email string `mapstructure:"email"`
}

type GoogleConfig struct {
	Credentials string `mapstructure:"credentials"`
	Project     string `mapstructure:"project"`
}

type Config struct {
	Service  string        `mapstructure:"service"`
	Endpoint string        `mapstructure:"endpoint"`
	Source   string        `mapstructure:"source"`
	Target   string        `mapstructure:"target"`
	Debounce time.Duration `mapstructure:"debounce"`
	Timeout  time.Duration `mapstructure:"timeout"`
	// Cleanup is none, entities or strip.
	Cleanup string `mapstructure:"cleanup"`

	MyMemory MyMemoryConfig       `mapstructure:"mymemory"`
	Google   GoogleConfig         `mapstructure:"google"`
	Log      logging.Config       `mapstructure:"log"`
	Sentry   logging.SentryConfig `mapstructure:"sentry"`
}

// SetDefaults registers every key so that environment variables are picked
// up by Unmarshal even when no config file mentions them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("service", "mymemory")
	v.SetDefault("endpoint", "")
	v.SetDefault("source", catalog.DefaultSource)
	v.SetDefault("target", catalog.DefaultTarget)
	v.SetDefault("debounce", coordinator.DefaultDelay)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("cleanup", string(postprocess.ModeNone))
	v.SetDefault("mymemory.email", "")
	v.SetDefault("google.credentials", "")
	v.SetDefault("google.project", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
}

// Load reads configFile, or tradutor.yaml from the working directory or
// $HOME/.config/tradutor when configFile is empty. A missing default file is
// not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("tradutor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "tradutor"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.Service = strings.ToLower(strings.TrimSpace(c.Service))
	switch c.Service {
	case "mymemory", "google":
	default:
		return fmt.Errorf("unknown service %q (want mymemory or google)", c.Service)
	}

	if strings.EqualFold(c.Source, AutoSource) {
		c.Source = AutoSource
	} else {
		code, err := catalog.Normalize(c.Source)
		if err != nil {
			return fmt.Errorf("source language: %w", err)
		}
		c.Source = code
	}

	code, err := catalog.Normalize(c.Target)
	if err != nil {
		return fmt.Errorf("target language: %w", err)
	}
	c.Target = code

	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative: %s", c.Debounce)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	mode, err := postprocess.ParseMode(c.Cleanup)
	if err != nil {
		return err
	}
	c.Cleanup = string(mode)
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ServiceConfig returns the settings handed to the translation backend.
func (c *Config) ServiceConfig() translator.ServiceConfig {
	return translator.ServiceConfig{
		Endpoint:    c.Endpoint,
		Email:       c.MyMemory.Email,
		Credentials: c.Google.Credentials,
		ProjectID:   c.Google.Project,
		Timeout:     c.Timeout,
		Cleanup:     postprocess.Mode(c.Cleanup),
	}
}

// CoordinatorConfig returns the session settings. The caller must resolve an
// "auto" source first.
func (c *Config) CoordinatorConfig() coordinator.Config {
	return coordinator.Config{
		SourceLang: c.Source,
		TargetLang: c.Target,
		Delay:      c.Debounce,
		Timeout:    c.Timeout,
	}
}
