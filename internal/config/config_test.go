package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every GITSWITCH_ env var that Load() reads.
var allConfigKeys = []string{
	"GITSWITCH_CONFIG",
	"GITSWITCH_DB_PATH",
	"GITSWITCH_LISTEN_ADDR",
	"GITSWITCH_SCAN_DEPTH",
	"GITSWITCH_IGNORE",
	"GITSWITCH_ROOTS",
	"GITSWITCH_WATCH_DEBOUNCE",
	"GITSWITCH_LOG_LEVEL",
	"GITSWITCH_SECRET_KEY",
}

// isolateConfigEnv saves and unsets all GITSWITCH_ env vars so tests don't
// inherit values from the host environment.
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITSWITCH_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7317", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.ScanDepth)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce)
	assert.Equal(t, []string{}, cfg.Ignore)
	assert.Equal(t, []string{}, cfg.Roots)
	assert.Equal(t, "state.db", filepath.Base(cfg.DBPath))
	assert.Empty(t, cfg.File)
	assert.False(t, cfg.HasSecretKey())
}

func TestLoadFile_ReadsTOML(t *testing.T) {
	isolateConfigEnv(t)
	path := writeConfig(t, `
db_path = "/tmp/gs.db"
listen_addr = "127.0.0.1:9999"
scan_depth = 3
ignore = ["vendor", "**/tmp-*"]
roots = ["/src/work", "/src/oss"]
watch_debounce = "2s"
log_level = "debug"
`)

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "/tmp/gs.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, 3, cfg.ScanDepth)
	assert.Equal(t, []string{"vendor", "**/tmp-*"}, cfg.Ignore)
	assert.Equal(t, []string{"/src/work", "/src/oss"}, cfg.Roots)
	assert.Equal(t, 2*time.Second, cfg.WatchDebounce)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	isolateConfigEnv(t)
	path := writeConfig(t, `
listen_addr = "127.0.0.1:9999"
scan_depth = 3
ignore = ["vendor"]
`)
	t.Setenv("GITSWITCH_LISTEN_ADDR", "0.0.0.0:7000")
	t.Setenv("GITSWITCH_SCAN_DEPTH", "8")
	t.Setenv("GITSWITCH_IGNORE", "a, b ,,c")
	t.Setenv("GITSWITCH_ROOTS", "/x"+string(os.PathListSeparator)+"/y")
	t.Setenv("GITSWITCH_WATCH_DEBOUNCE", "1s")

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.ListenAddr)
	assert.Equal(t, 8, cfg.ScanDepth)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Ignore)
	assert.Equal(t, []string{"/x", "/y"}, cfg.Roots)
	assert.Equal(t, time.Second, cfg.WatchDebounce)
}

func TestLoadFile_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad toml", file: `scan_depth = "five`, wantErr: "parsing config"},
		{name: "bad file duration", file: `watch_debounce = "soon"`, wantErr: "watch_debounce"},
		{name: "zero depth", file: `scan_depth = 0`, wantErr: "scan depth"},
		{name: "bad env depth", env: map[string]string{"GITSWITCH_SCAN_DEPTH": "deep"}, wantErr: "GITSWITCH_SCAN_DEPTH"},
		{name: "bad env duration", env: map[string]string{"GITSWITCH_WATCH_DEBOUNCE": "x"}, wantErr: "GITSWITCH_WATCH_DEBOUNCE"},
		{name: "bad level", env: map[string]string{"GITSWITCH_LOG_LEVEL": "loud"}, wantErr: "unknown log level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolateConfigEnv(t)
			path := writeConfig(t, tc.file)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadFile(path)

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_SecretKey_Valid(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITSWITCH_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	// 64 hex chars = 32 bytes
	t.Setenv("GITSWITCH_SECRET_KEY", "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Len(t, cfg.SecretKey, 32)
	assert.True(t, cfg.HasSecretKey())
}

func TestLoad_SecretKey_TooShort(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITSWITCH_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("GITSWITCH_SECRET_KEY", "deadbeef")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITSWITCH_SECRET_KEY")
}

func TestLoad_SecretKey_NotHex(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITSWITCH_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	// 64 chars but not valid hex
	t.Setenv("GITSWITCH_SECRET_KEY", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITSWITCH_SECRET_KEY")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelWarn,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
