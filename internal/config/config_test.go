package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(RedisURLEnv, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Synonyms.Limit)
	assert.Equal(t, "first", cfg.Matcher.TieBreak)
	assert.Equal(t, 0.0, cfg.Matcher.MinConfidence)
	assert.Equal(t, "that", cfg.Responder.DefaultWord)
	assert.Equal(t, "memory", cfg.History.Type)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Catalog.Path)
}

func TestLoad_FillsDefaults(t *testing.T) {
	t.Setenv(RedisURLEnv, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
catalog:
  path: intents.yaml
  watch: true
matcher:
  min_confidence: 0.2
history:
  type: redis
  redis:
    url: redis://localhost:6379/0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "intents.yaml", cfg.Catalog.Path)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, 0.2, cfg.Matcher.MinConfidence)
	assert.Equal(t, "first", cfg.Matcher.TieBreak)
	assert.Equal(t, 3, cfg.Synonyms.Limit)
	require.NotNil(t, cfg.History.Redis)
	assert.Equal(t, "redis://localhost:6379/0", cfg.History.Redis.URL)
	assert.Equal(t, "conversation:", cfg.History.Redis.KeyPrefix)
	assert.Equal(t, 86400, cfg.History.Redis.TTLSecs)
}

func TestLoad_EnvOverridesRedisURL(t *testing.T) {
	t.Setenv(RedisURLEnv, "redis://cache:6379/1")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.NotNil(t, cfg.History.Redis)
	assert.Equal(t, "redis://cache:6379/1", cfg.History.Redis.URL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("matcher: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(RedisURLEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Responder.Seed = 99
	cfg.Matcher.TieBreak = "last"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), loaded.Responder.Seed)
	assert.Equal(t, "last", loaded.Matcher.TieBreak)
}

func TestLoadDefault_WritesUserConfig(t *testing.T) {
	t.Setenv(RedisURLEnv, "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "intentbot", "config.yaml"), path)
	assert.Equal(t, "memory", cfg.History.Type)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
