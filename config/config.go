package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. BRIEFING_LLM_API_KEY.
const EnvPrefix = "BRIEFING"

// Config is the process-level configuration. The GitHub target lives in the
// settings store instead, since the user edits it at runtime.
type Config struct {
	LLM            LLMConfig     `yaml:"llm" mapstructure:"llm"`
	ServerAddr     string        `yaml:"server_addr" mapstructure:"server_addr"`
	SettingsPath   string        `yaml:"settings_path" mapstructure:"settings_path"`
	GitHubAPIURL   string        `yaml:"github_api_url" mapstructure:"github_api_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	LogLevel       string        `yaml:"log_level" mapstructure:"log_level"`
	LogPretty      bool          `yaml:"log_pretty" mapstructure:"log_pretty"`
}

// LLMConfig selects the model backend used by the briefing generator.
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// Load reads defaults, then the optional file at path, then BRIEFING_* env vars.
// An explicit path that does not exist is an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-3-pro-preview")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("settings_path", DefaultSettingsPath())
	v.SetDefault("github_api_url", "https://api.github.com")
	v.SetDefault("request_timeout", 3*time.Minute)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
}

// Validate checks the LLM section; everything else has usable defaults.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "":
		return errors.New("llm config missing; please set llm.provider")
	case "mock":
		return nil
	case "gemini", "openai":
	case "deepseek":
		// DeepSeek 走 OpenAI 兼容接口，必须显式给出 base_url。
		if c.LLM.BaseURL == "" {
			return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm api key missing; set llm.api_key or %s_LLM_API_KEY", EnvPrefix)
	}
	if c.LLM.Model == "" {
		return errors.New("llm model is required")
	}
	return nil
}

// DefaultSettingsPath returns <UserConfigDir>/obsidian-briefing-sync/settings.json,
// falling back to the working directory when no config dir is known.
func DefaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "settings.json"
	}
	return filepath.Join(dir, "obsidian-briefing-sync", "settings.json")
}
