package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Gemini GeminiConfig
	Voice  VoiceConfig
	UI     UIConfig
}

// GeminiConfig holds model endpoint settings.
type GeminiConfig struct {
	APIKeyEnv string `mapstructure:"api_key_env"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	LiveModel string `mapstructure:"live_model"`
	LiveHost  string `mapstructure:"live_host"`
}

// VoiceConfig holds audio pipeline settings.
type VoiceConfig struct {
	Name       string `mapstructure:"name"`
	InputRate  int    `mapstructure:"input_rate"`
	OutputRate int    `mapstructure:"output_rate"`
	FrameSize  int    `mapstructure:"frame_size"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Username       string `mapstructure:"username"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	LogPath        string `mapstructure:"log_path"`
}

// Load reads configuration from file and env. Env var overrides use prefix LUMIVAULT_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("gemini.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-3-flash-preview")
	v.SetDefault("gemini.live_model", "gemini-2.5-flash-native-audio-preview-12-2025")
	v.SetDefault("gemini.live_host", "generativelanguage.googleapis.com")
	v.SetDefault("voice.name", "Kore")
	v.SetDefault("voice.input_rate", 16000)
	v.SetDefault("voice.output_rate", 24000)
	v.SetDefault("voice.frame_size", 4096)
	v.SetDefault("ui.username", "Alex")
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.log_path", filepath.Join(os.Getenv("HOME"), ".local", "state", "lumivault", "lumivault.log"))

	v.SetConfigType("toml")

	cfgPath := os.Getenv("LUMIVAULT_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "lumivault"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LUMIVAULT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The API key is stored in plain text in the config file; encourage users to prefer
// env vars or the encrypted key store.
func Save(cfg Config) error {
	path := os.Getenv("LUMIVAULT_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "lumivault", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("gemini.api_key_env", cfg.Gemini.APIKeyEnv)
	v.Set("gemini.api_key", cfg.Gemini.APIKey)
	v.Set("gemini.model", cfg.Gemini.Model)
	v.Set("gemini.live_model", cfg.Gemini.LiveModel)
	v.Set("gemini.live_host", cfg.Gemini.LiveHost)
	v.Set("voice.name", cfg.Voice.Name)
	v.Set("voice.input_rate", cfg.Voice.InputRate)
	v.Set("voice.output_rate", cfg.Voice.OutputRate)
	v.Set("voice.frame_size", cfg.Voice.FrameSize)
	v.Set("ui.username", cfg.UI.Username)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.log_path", cfg.UI.LogPath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
