// Package config loads server configuration: built-in defaults, then an
// optional YAML file, then environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr         string `yaml:"addr"`
	DatabasePath string `yaml:"database_path"`

	LLM struct {
		Provider  string `yaml:"provider"`
		APIKey    string `yaml:"api_key"`
		Model     string `yaml:"model"`
		TimeoutMS int    `yaml:"timeout_ms"`
	} `yaml:"llm"`

	Cache struct {
		TTLSeconds int `yaml:"ttl_seconds"`
		MaxEntries int `yaml:"max_entries"`
	} `yaml:"cache"`
}

func Default() *Config {
	cfg := &Config{
		Addr:         ":8080",
		DatabasePath: "todo.db",
	}
	cfg.LLM.Provider = "auto"
	cfg.LLM.TimeoutMS = 20000
	cfg.Cache.TTLSeconds = 300
	cfg.Cache.MaxEntries = 1024
	return cfg
}

// Load reads the config file at path when it exists and applies
// environment overrides on top. An empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		if v := os.Getenv(key); v != "" && c.LLM.APIKey == "" {
			c.LLM.APIKey = v
		}
	}
	if v := envInt("LLM_TIMEOUT_MS"); v > 0 {
		c.LLM.TimeoutMS = v
	}
	if v := envInt("CACHE_TTL_SECONDS"); v > 0 {
		c.Cache.TTLSeconds = v
	}
	if v := envInt("CACHE_MAX_ENTRIES"); v > 0 {
		c.Cache.MaxEntries = v
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
