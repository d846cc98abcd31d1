// Package config loads mamacheck configuration from defaults, an optional
// YAML file, a .env file and MAMACHECK_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/mamacheck/internal/llm"
	"github.com/abhisek/mamacheck/internal/retrieval"
	"github.com/abhisek/mamacheck/internal/session"
)

// EnvPrefix prefixes every environment variable, e.g. MAMACHECK_SERVER_ADDR.
const EnvPrefix = "MAMACHECK"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	LLM       llm.Config      `mapstructure:"llm"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Session   session.Config  `mapstructure:"session"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects the LLM event store. An empty DSN means the default
// SQLite file; postgres:// DSNs use PostgreSQL.
type StoreConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RulesConfig optionally points at an override rule set file.
type RulesConfig struct {
	Path string `mapstructure:"path"`
}

type RetrievalConfig struct {
	TopK      int     `mapstructure:"top_k"`
	Threshold float64 `mapstructure:"threshold"`
}

// defaults lists every key so that AutomaticEnv can see it during Unmarshal.
func defaults() map[string]any {
	llmDefaults := llm.DefaultConfig()
	return map[string]any{
		"server.addr":             ":8080",
		"server.read_timeout":     15 * time.Second,
		"server.write_timeout":    60 * time.Second,
		"server.shutdown_timeout": 10 * time.Second,

		"store.dsn": "",

		"log.level":  "info",
		"log.format": "text",

		"llm.provider":            llmDefaults.Provider,
		"llm.model":               "",
		"llm.timeout":             llmDefaults.Timeout,
		"llm.anthropic.api_key":   "",
		"llm.anthropic.model":     llmDefaults.Anthropic.Model,
		"llm.anthropic.base_url":  "",
		"llm.openai.api_key":      "",
		"llm.openai.model":        llmDefaults.OpenAI.Model,
		"llm.openai.base_url":     "",
		"llm.gemini.api_key":      "",
		"llm.gemini.model":        llmDefaults.Gemini.Model,
		"llm.openrouter.api_key":  "",
		"llm.openrouter.model":    llmDefaults.OpenRouter.Model,
		"llm.openrouter.base_url": "",
		"llm.retry.max_attempts":  llmDefaults.Retry.MaxAttempts,
		"llm.retry.initial_wait":  llmDefaults.Retry.InitialWait,
		"llm.retry.max_wait":      llmDefaults.Retry.MaxWait,
		"llm.retry.multiplier":    llmDefaults.Retry.Multiplier,

		"rules.path": "",

		"retrieval.top_k":     retrieval.DefaultTopK,
		"retrieval.threshold": retrieval.DefaultThreshold,

		"session.ttl":           session.DefaultTTL,
		"session.max_questions": session.DefaultMaxQuestions,
	}
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads .env, the config file and the environment into a validated
// Config. file may be empty, in which case
// $XDG_CONFIG_HOME/mamacheck/config.yaml is used if it exists.
func Load(v *viper.Viper, file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configDir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "mamacheck"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mamacheck"), nil
}

// Validate rejects values the rest of the program cannot work with.
func (c Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.Threshold < 0 || c.Retrieval.Threshold >= 1 {
		return fmt.Errorf("retrieval.threshold must be in [0,1), got %g", c.Retrieval.Threshold)
	}
	if c.Session.MaxQuestions <= 0 {
		return fmt.Errorf("session.max_questions must be positive, got %d", c.Session.MaxQuestions)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}
