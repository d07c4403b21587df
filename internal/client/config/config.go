package config

import (
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/imagex"
)

// Config holds runtime settings for the recipe-ai CLI.
type Config struct {
	ServerBaseURL  string
	SessionDBPath  string
	PreviewDir     string
	DetectTimeout  time.Duration
	RequestTimeout time.Duration
	RevealDelay    time.Duration
	UploadPolicy   imagex.Mode
	MaxUploadBytes int64
	LogLevel       slog.Level
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.SessionDBPath = "recipeai.db"
	c.PreviewDir = ""
	c.DetectTimeout = 60 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.RevealDelay = 100 * time.Millisecond
	c.UploadPolicy = imagex.ModeAdvisory
	c.MaxUploadBytes = imagex.DefaultMaxBytes
	c.LogLevel = slog.LevelInfo
}

// Policy is the upload policy described by c.
func (c *Config) Policy() imagex.Policy {
	p := imagex.DefaultPolicy()
	p.Mode = c.UploadPolicy
	p.MaxBytes = c.MaxUploadBytes
	return p
}

// LoadConfig builds a Config from defaults, the config file, the environment
// and the flags in fs, in that order. fs must have been prepared with
// RegisterFlags and parsed.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := configPath(fs)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}

	if err := applyFlags(cfg, fs); err != nil {
		return nil, err
	}
	return cfg, nil
}
