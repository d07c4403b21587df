package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/imagex"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfig, EnvServer, EnvDB, EnvDetectTimeout, EnvUploadPolicy, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	want := Config{
		ServerBaseURL:  "http://127.0.0.1:8000",
		SessionDBPath:  "recipeai.db",
		DetectTimeout:  60 * time.Second,
		RequestTimeout: 15 * time.Second,
		RevealDelay:    100 * time.Millisecond,
		UploadPolicy:   imagex.ModeAdvisory,
		MaxUploadBytes: 5 << 20,
		LogLevel:       slog.LevelInfo,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_DefaultsOnly(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(newFlags(t))
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *cfg)
}

func TestLoadConfig_JSONFile(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "cfg.json", `{
		"server_base_url": "http://api.example:9000",
		"detect_timeout": "30s",
		"reveal_delay": 5000000,
		"upload_policy": "strict",
		"log_level": "debug"
	}`)

	cfg, err := LoadConfig(newFlags(t, "-c", p))
	require.NoError(t, err)
	assert.Equal(t, "http://api.example:9000", cfg.ServerBaseURL)
	assert.Equal(t, 30*time.Second, cfg.DetectTimeout)
	assert.Equal(t, 5*time.Millisecond, cfg.RevealDelay)
	assert.Equal(t, imagex.ModeStrict, cfg.UploadPolicy)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "recipeai.db", cfg.SessionDBPath, "unset keys keep defaults")
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "cfg.yaml", "session_db_path: /tmp/s.db\nrequest_timeout: 2s\nmax_upload_bytes: 1024\n")

	cfg, err := LoadConfig(newFlags(t, "--config", p))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/s.db", cfg.SessionDBPath)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, int64(1024), cfg.Policy().MaxBytes)
}

func TestLoadConfig_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "cfg.yml", "server_base_url: http://from-file\n")
	t.Setenv(EnvConfig, p)

	cfg, err := LoadConfig(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "http://from-file", cfg.ServerBaseURL)
}

func TestLoadConfig_Precedence(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "cfg.json", `{"server_base_url":"http://file","session_db_path":"file.db","detect_timeout":"10s"}`)
	t.Setenv(EnvServer, "http://env")
	t.Setenv(EnvDetectTimeout, "20s")

	cfg, err := LoadConfig(newFlags(t, "-c", p, "-a", "http://flag"))
	require.NoError(t, err)
	assert.Equal(t, "http://flag", cfg.ServerBaseURL, "flag beats env and file")
	assert.Equal(t, 20*time.Second, cfg.DetectTimeout, "env beats file")
	assert.Equal(t, "file.db", cfg.SessionDBPath, "file beats default")
}

func TestLoadConfig_Flags(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(newFlags(t, "--db", "x.db", "--timeout", "5s", "--policy", "strict", "--log-level", "warn"))
	require.NoError(t, err)
	assert.Equal(t, "x.db", cfg.SessionDBPath)
	assert.Equal(t, 5*time.Second, cfg.DetectTimeout)
	assert.Equal(t, imagex.ModeStrict, cfg.UploadPolicy)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.True(t, cfg.Policy().Strict())
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("env errors are joined", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvDetectTimeout, "soon")
		t.Setenv(EnvUploadPolicy, "lenient")

		_, err := LoadConfig(newFlags(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvDetectTimeout)
		assert.Contains(t, err.Error(), EnvUploadPolicy)
	})

	t.Run("bad policy flag", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadConfig(newFlags(t, "--policy", "lenient"))
		require.Error(t, err)
	})

	t.Run("non-positive timeout flag", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadConfig(newFlags(t, "--timeout", "0s"))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadConfig(newFlags(t, "-c", filepath.Join(t.TempDir(), "nope.json")))
		require.Error(t, err)
	})

	t.Run("unknown extension", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadConfig(newFlags(t, "-c", writeFile(t, "cfg.toml", "x=1")))
		require.ErrorContains(t, err, "unsupported config format")
	})

	t.Run("bad json", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadConfig(newFlags(t, "-c", writeFile(t, "cfg.json", "{")))
		require.Error(t, err)
	})
}

func TestLoadConfig_NilFlagSet(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDB, "env.db")
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.SessionDBPath)
}
