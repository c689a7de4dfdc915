package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RedisURLEnv overrides history.redis.url when set.
const RedisURLEnv = "INTENTBOT_REDIS_URL"

// CatalogConfig locates the intent catalog. An empty path selects the built-in catalog.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// SynonymsConfig configures the optional thesaurus used for token expansion.
type SynonymsConfig struct {
	Path  string `yaml:"path"`
	Limit int    `yaml:"limit"`
}

// MatcherConfig configures best-match selection.
type MatcherConfig struct {
	TieBreak      string  `yaml:"tie_break"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// ResponderConfig configures reply synthesis. A zero seed draws one from the clock.
type ResponderConfig struct {
	DefaultWord     string `yaml:"default_word"`
	FallbackMessage string `yaml:"fallback_message"`
	Seed            uint64 `yaml:"seed"`
}

// RedisConfig contains connection details for the Redis history store.
type RedisConfig struct {
	URL       string `yaml:"url"`
	KeyPrefix string `yaml:"key_prefix"`
	TTLSecs   int    `yaml:"ttl_secs"`
}

// HistoryConfig selects where conversation turns are kept.
type HistoryConfig struct {
	Type  string       `yaml:"type"`
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Synonyms  SynonymsConfig  `yaml:"synonyms"`
	Matcher   MatcherConfig   `yaml:"matcher"`
	Responder ResponderConfig `yaml:"responder"`
	History   HistoryConfig   `yaml:"history"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./intentbot.yaml first, then ~/.config/intentbot/config.yaml.
// If neither exists, it writes defaults to ~/.config/intentbot/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "intentbot.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultUserConfigPath returns ~/.config/intentbot/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "intentbot", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Synonyms:  SynonymsConfig{Limit: 3},
		Matcher:   MatcherConfig{TieBreak: "first"},
		Responder: ResponderConfig{DefaultWord: "that", FallbackMessage: "Sorry, I didn't quite get that. Could you rephrase?"},
		History:   HistoryConfig{Type: "memory"},
		Log:       LogConfig{Level: "info", Format: "console", Output: "stderr", FilePath: "intentbot.log"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Synonyms.Limit <= 0 {
		cfg.Synonyms.Limit = def.Synonyms.Limit
	}
	if cfg.Matcher.TieBreak == "" {
		cfg.Matcher.TieBreak = def.Matcher.TieBreak
	}
	if cfg.Responder.DefaultWord == "" {
		cfg.Responder.DefaultWord = def.Responder.DefaultWord
	}
	if cfg.Responder.FallbackMessage == "" {
		cfg.Responder.FallbackMessage = def.Responder.FallbackMessage
	}
	if cfg.History.Type == "" {
		cfg.History.Type = def.History.Type
	}
	if cfg.History.Type == "redis" {
		if cfg.History.Redis == nil {
			cfg.History.Redis = &RedisConfig{}
		}
		if cfg.History.Redis.KeyPrefix == "" {
			cfg.History.Redis.KeyPrefix = "conversation:"
		}
		if cfg.History.Redis.TTLSecs == 0 {
			cfg.History.Redis.TTLSecs = 24 * 60 * 60
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = def.Log.Output
	}
	if cfg.Log.FilePath == "" {
		cfg.Log.FilePath = def.Log.FilePath
	}
}

func applyEnv(cfg *AppConfig) {
	url := os.Getenv(RedisURLEnv)
	if url == "" {
		return
	}
	if cfg.History.Redis == nil {
		cfg.History.Redis = &RedisConfig{KeyPrefix: "conversation:", TTLSecs: 24 * 60 * 60}
	}
	cfg.History.Redis.URL = url
}
