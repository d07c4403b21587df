package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/imagex"
)

const (
	FlagConfig   = "config"
	FlagServer   = "server"
	FlagDB       = "db"
	FlagTimeout  = "timeout"
	FlagPolicy   = "policy"
	FlagLogLevel = "log-level"
)

// RegisterFlags defines the configuration flags on fs. Help text shows the
// built-in defaults; only flags set explicitly override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to a JSON or YAML config file (env "+EnvConfig+")")
	fs.StringP(FlagServer, "a", d.ServerBaseURL, "backend base URL")
	fs.String(FlagDB, d.SessionDBPath, "path of the local session database")
	fs.Duration(FlagTimeout, d.DetectTimeout, "detection request timeout")
	fs.String(FlagPolicy, string(d.UploadPolicy), "upload policy: advisory or strict")
	fs.String(FlagLogLevel, d.LogLevel.String(), "log level: debug, info, warn, error")
}

func configPath(fs *pflag.FlagSet) (string, error) {
	if fs != nil && fs.Changed(FlagConfig) {
		return fs.GetString(FlagConfig)
	}
	return os.Getenv(EnvConfig), nil
}

// applyFlags overlays the explicitly set flags onto cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}

	var err error
	if fs.Changed(FlagServer) {
		if cfg.ServerBaseURL, err = fs.GetString(FlagServer); err != nil {
			return err
		}
	}
	if fs.Changed(FlagDB) {
		if cfg.SessionDBPath, err = fs.GetString(FlagDB); err != nil {
			return err
		}
	}
	if fs.Changed(FlagTimeout) {
		if cfg.DetectTimeout, err = fs.GetDuration(FlagTimeout); err != nil {
			return err
		}
		if cfg.DetectTimeout <= 0 {
			return fmt.Errorf("--%s must be positive", FlagTimeout)
		}
	}
	if fs.Changed(FlagPolicy) {
		s, err := fs.GetString(FlagPolicy)
		if err != nil {
			return err
		}
		if cfg.UploadPolicy, err = imagex.ParseMode(s); err != nil {
			return err
		}
	}
	if fs.Changed(FlagLogLevel) {
		s, err := fs.GetString(FlagLogLevel)
		if err != nil {
			return err
		}
		if err := cfg.LogLevel.UnmarshalText([]byte(s)); err != nil {
			return fmt.Errorf("--%s: %w", FlagLogLevel, err)
		}
	}
	return nil
}
