package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"agency-backend/internal/logger"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.local.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

type staticProvider struct {
	val string
	err error
}

func (p staticProvider) Name() string            { return "static" }
func (p staticProvider) Lookup() (string, error) { return p.val, p.err }

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		providers []CredentialProvider
		expected  string
	}{
		{"no providers", nil, ""},
		{"first non-blank wins", []CredentialProvider{staticProvider{val: "a"}, staticProvider{val: "b"}}, "a"},
		{"blank falls through", []CredentialProvider{staticProvider{val: ""}, staticProvider{val: "b"}}, "b"},
		{"error falls through", []CredentialProvider{staticProvider{err: errors.New("boom")}, staticProvider{val: "c"}}, "c"},
		{"all blank", []CredentialProvider{staticProvider{}, staticProvider{}}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Resolve(tc.providers...))
		})
	}
}

func TestEnvProvider_TrimsValue(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "  secret-123 \n")

	val, err := EnvProvider{Key: "TEST_GEMINI_KEY"}.Lookup()
	require.NoError(t, err)
	assert.Equal(t, "secret-123", val)
}

func TestFileProvider(t *testing.T) {
	t.Run("reads key from dotenv file", func(t *testing.T) {
		path := writeFile(t, "GEMINI_API_KEY=file-key\nOTHER=x\n")

		val, err := FileProvider{Path: path, Key: "GEMINI_API_KEY"}.Lookup()
		require.NoError(t, err)
		assert.Equal(t, "file-key", val)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.env")

		val, err := FileProvider{Path: path, Key: "GEMINI_API_KEY"}.Lookup()
		require.NoError(t, err)
		assert.Empty(t, val)
	})

	t.Run("empty path", func(t *testing.T) {
		val, err := FileProvider{Key: "GEMINI_API_KEY"}.Lookup()
		require.NoError(t, err)
		assert.Empty(t, val)
	})

	t.Run("key absent from file", func(t *testing.T) {
		path := writeFile(t, "OTHER=x\n")

		val, err := FileProvider{Path: path, Key: "GEMINI_API_KEY"}.Lookup()
		require.NoError(t, err)
		assert.Empty(t, val)
	})
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_LOCAL_CONFIG", filepath.Join(t.TempDir(), "absent.env"))

	cfg, err := Load()
	require.NoError(t, err)
	cfg.ResolveAPIKey()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.GeminiBaseURL)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 20, cfg.RateLimitPerMinute)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_CredentialPriority(t *testing.T) {
	path := writeFile(t, "GEMINI_API_KEY=from-file\n")
	t.Setenv("GEMINI_LOCAL_CONFIG", path)

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "from-env")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Empty(t, cfg.GeminiAPIKey, "Load leaves the credential unresolved")

		cfg.ResolveAPIKey()
		assert.Equal(t, "from-env", cfg.GeminiAPIKey)
	})

	t.Run("blank env falls back to file", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "   ")

		cfg, err := Load()
		require.NoError(t, err)
		cfg.ResolveAPIKey()
		assert.Equal(t, "from-file", cfg.GeminiAPIKey)
	})
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_NonNumericRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "abc")

	_, err := Load()
	assert.Error(t, err)
}

func TestResolveAPIKey_LogsUnreadableSource(t *testing.T) {
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })
	core, logs := observer.New(zap.WarnLevel)
	logger.Log = zap.New(core).Sugar()

	// A directory exists but cannot be parsed as a dotenv file.
	t.Setenv("GEMINI_API_KEY", "")
	cfg := &Config{GeminiLocalConfig: t.TempDir()}
	cfg.ResolveAPIKey()

	assert.Empty(t, cfg.GeminiAPIKey)
	entries := logs.FilterMessage("credential source unreadable").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "file:"+cfg.GeminiLocalConfig, entries[0].ContextMap()["source"])
}

func TestResolveAPIKey_RelativeFileUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.env"), []byte("GEMINI_API_KEY=cwd-key\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("GEMINI_API_KEY", "")

	cfg := &Config{GeminiLocalConfig: "config.local.env"}
	cfg.ResolveAPIKey()

	assert.Equal(t, "cwd-key", cfg.GeminiAPIKey)
}
