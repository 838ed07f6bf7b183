package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Provider  string       `mapstructure:"provider"`
	Listen    string       `mapstructure:"listen"`     // relay bind address
	ServerURL string       `mapstructure:"server_url"` // relay base URL for the practice client
	Gemini    GeminiConfig `mapstructure:"gemini"`
	OpenAI    OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey string            `mapstructure:"api_key"`
	Models map[string]string `mapstructure:"models"` // selector (pro/smart/internet) -> model ID
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "proefgesprek")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("provider", "gemini")
	viper.SetDefault("listen", ":8085")
	viper.SetDefault("server_url", "http://localhost:8085")
	viper.SetDefault("gemini.models", map[string]string{
		"pro":      "gemini-2.5-pro",
		"smart":    "gemini-2.5-flash",
		"internet": "gemini-2.0-flash-exp",
	})
	viper.SetDefault("openai.model", "gpt-5.2")

	// Read config file (optional - won't error if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand environment variables in API keys
	cfg.Gemini.APIKey = expandEnv(cfg.Gemini.APIKey)
	cfg.OpenAI.APIKey = expandEnv(cfg.OpenAI.APIKey)

	// Fall back to environment variables if API keys not set
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return &cfg, nil
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "proefgesprek", "config.yaml"), nil
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`provider: %s

listen: "%s"
server_url: %s

gemini:
  api_key: ${GEMINI_API_KEY}
  models:
    pro: %s
    smart: %s
    internet: %s

openai:
  api_key: ${OPENAI_API_KEY}
  model: %s
`, cfg.Provider, cfg.Listen, cfg.ServerURL,
		cfg.Gemini.Models["pro"], cfg.Gemini.Models["smart"], cfg.Gemini.Models["internet"],
		cfg.OpenAI.Model)

	return os.WriteFile(path, []byte(content), 0600)
}
