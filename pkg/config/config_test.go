package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "https://photon.komoot.io/api/", cfg.Geo.Endpoint)
	assert.Equal(t, 5, cfg.Geo.Limit)
	assert.Equal(t, 5*time.Second, cfg.Geo.Timeout)
	assert.Equal(t, 2, cfg.Calendar.Sect)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15, cfg.Server.RateLimit)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
geo:
  language: ko
  limit: 8
server:
  port: "9000"
log:
  level: debug
`), 0o600))

	t.Setenv("FOURPILLARS_SERVER_PORT", "9100")
	t.Setenv("FOURPILLARS_PERSONALITY_TIMEOUT", "3s")

	v := New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("limit", 5, "")
	fs.String("unused", "", "")
	require.NoError(t, fs.Parse([]string{"--limit=3"}))
	require.NoError(t, BindFlags(v, fs, map[string]string{"limit": "geo.limit", "missing": "geo.endpoint"}))

	cfg, err := Load(v, file)
	require.NoError(t, err)

	assert.Equal(t, "ko", cfg.Geo.Language, "file beats default")
	assert.Equal(t, "9100", cfg.Server.Port, "env beats file")
	assert.Equal(t, 3, cfg.Geo.Limit, "flag beats file")
	assert.Equal(t, 3*time.Second, cfg.Personality.Timeout)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestExplicitFileMissing(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBadLevel(t *testing.T) {
	cfg := &Config{Log: Log{Level: "chatty"}}
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}
