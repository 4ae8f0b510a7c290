package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-tools/internal/imaging"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 95, cfg.JPEGQuality)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
http:
  timeout: 5s
  user_agent: test-agent
fetch:
  concurrency: 2
output:
  jpeg_quality: 80
`)
	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "test-agent", cfg.UserAgent)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 80, cfg.JPEGQuality)
	assert.Equal(t, path, cfg.File)
}

func TestLoadFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".image-tools.yaml"), []byte("log_level: warn\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log_level: debug\nfetch:\n  concurrency: 2\n")
	t.Setenv("IMAGE_TOOLS_LOG_LEVEL", "error")
	t.Setenv("IMAGE_TOOLS_FETCH_CONCURRENCY", "8")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestFlagOverridesEnv(t *testing.T) {
	t.Setenv("IMAGE_TOOLS_LOG_LEVEL", "error")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level", "trace"}))

	v := New()
	require.NoError(t, BindFlags(v, flags))
	cfg, err := Load(v, writeConfig(t, "log_level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")

	_, err = Load(New(), writeConfig(t, "fetch:\n  concurrency: 0\n"))
	assert.Error(t, err)

	_, err = Load(New(), writeConfig(t, "output:\n  jpeg_quality: 101\n"))
	assert.Error(t, err)

	_, err = Load(New(), writeConfig(t, "log_level: [unclosed\n"))
	assert.Error(t, err)
}

func TestConfigureSource(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.UserAgent()
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := &Config{HTTPTimeout: time.Second, UserAgent: "configured-agent", Concurrency: 1, JPEGQuality: 90}
	src := imaging.NewSource()
	cfg.Configure(src)

	_, err := src.Resolve(context.Background(), srv.URL+"/a.png")
	require.Error(t, err)
	assert.Equal(t, "configured-agent", gotAgent)
}
