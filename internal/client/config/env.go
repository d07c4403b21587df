package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/imagex"
)

const (
	EnvConfig        = "RECIPEAI_CONFIG"
	EnvServer        = "RECIPEAI_SERVER"
	EnvDB            = "RECIPEAI_DB"
	EnvDetectTimeout = "RECIPEAI_DETECT_TIMEOUT"
	EnvUploadPolicy  = "RECIPEAI_UPLOAD_POLICY"
	EnvLogLevel      = "RECIPEAI_LOG_LEVEL"
)

// getenv reads typed values and collects every parse error so that a bad
// environment is reported in one go.
type getenv struct {
	errs []error
}

func (ge *getenv) Err() error {
	return errors.Join(ge.errs...)
}

type parseFunc[T any] func(s string) (T, error)

func getValue[T any](key string, defaultValue T, parse parseFunc[T]) (T, error) {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return defaultValue, nil
	}
	v, err := parse(s)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func (ge *getenv) String(key string, defaultValue string) string {
	v, _ := getValue(key, defaultValue, func(s string) (string, error) { return s, nil })
	return v
}

func (ge *getenv) Duration(key string, defaultValue time.Duration) time.Duration {
	v, err := getValue(key, defaultValue, func(s string) (time.Duration, error) {
		d, err := time.ParseDuration(s)
		if err == nil && d <= 0 {
			err = fmt.Errorf("duration must be positive, got %s", s)
		}
		return d, err
	})
	if err != nil {
		ge.errs = append(ge.errs, err)
	}
	return v
}

func (ge *getenv) LogLevel(key string, defaultValue slog.Level) slog.Level {
	v, err := getValue(key, defaultValue, func(s string) (slog.Level, error) {
		var v slog.Level
		err := v.UnmarshalText([]byte(s))
		return v, err
	})
	if err != nil {
		ge.errs = append(ge.errs, err)
	}
	return v
}

func (ge *getenv) Mode(key string, defaultValue imagex.Mode) imagex.Mode {
	v, err := getValue(key, defaultValue, imagex.ParseMode)
	if err != nil {
		ge.errs = append(ge.errs, err)
	}
	return v
}

func parseEnv(cfg *Config) error {
	var ge getenv
	cfg.ServerBaseURL = ge.String(EnvServer, cfg.ServerBaseURL)
	cfg.SessionDBPath = ge.String(EnvDB, cfg.SessionDBPath)
	cfg.DetectTimeout = ge.Duration(EnvDetectTimeout, cfg.DetectTimeout)
	cfg.UploadPolicy = ge.Mode(EnvUploadPolicy, cfg.UploadPolicy)
	cfg.LogLevel = ge.LogLevel(EnvLogLevel, cfg.LogLevel)
	return ge.Err()
}
