package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/imagex"
	"github.com/jain-bhavna/recipe-ai-app/internal/timex"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Zero values
// leave the corresponding Config field untouched.
type FileConfig struct {
	ServerBaseURL  string         `json:"server_base_url" yaml:"server_base_url"`
	SessionDBPath  string         `json:"session_db_path" yaml:"session_db_path"`
	PreviewDir     string         `json:"preview_dir" yaml:"preview_dir"`
	DetectTimeout  timex.Duration `json:"detect_timeout" yaml:"detect_timeout"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RevealDelay    timex.Duration `json:"reveal_delay" yaml:"reveal_delay"`
	UploadPolicy   string         `json:"upload_policy" yaml:"upload_policy"`
	MaxUploadBytes int64          `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
}

func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".json", "":
		err = json.Unmarshal(data, &fc)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) error {
	if fc.ServerBaseURL != "" {
		cfg.ServerBaseURL = fc.ServerBaseURL
	}
	if fc.SessionDBPath != "" {
		cfg.SessionDBPath = fc.SessionDBPath
	}
	if fc.PreviewDir != "" {
		cfg.PreviewDir = fc.PreviewDir
	}
	if fc.DetectTimeout.Duration > 0 {
		cfg.DetectTimeout = fc.DetectTimeout.Duration
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RevealDelay.Duration > 0 {
		cfg.RevealDelay = fc.RevealDelay.Duration
	}
	if fc.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = fc.MaxUploadBytes
	}
	if fc.UploadPolicy != "" {
		m, err := imagex.ParseMode(fc.UploadPolicy)
		if err != nil {
			return err
		}
		cfg.UploadPolicy = m
	}
	if fc.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(fc.LogLevel)); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	return nil
}
