package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration parsed from YAML.
// Values may reference environment variables with ${VAR} syntax; they are
// expanded before parsing.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Vendors VendorsConfig `yaml:"vendors"`
}

// ServerConfig defines listener and CORS configuration.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// VendorsConfig catalogues credentials for every supported vendor. A vendor
// left blank is treated as unconfigured, not as a configuration error: the
// gateway starts and reports the gap through /health and per-request 503s.
type VendorsConfig struct {
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Azure     AzureConfig     `yaml:"azure"`
}

// OpenAIConfig holds OpenAI credentials and endpoint parameters.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// GeminiConfig holds Google Gemini credentials and endpoint parameters.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// AnthropicConfig holds Anthropic credentials and endpoint parameters.
type AnthropicConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	APIVersion string `yaml:"api_version"`
}

// AzureConfig holds Azure OpenAI credentials. Azure requires the deployment
// name templated into the request path, so chat and image deployments are
// configured separately.
type AzureConfig struct {
	APIKey          string `yaml:"api_key"`
	Endpoint        string `yaml:"endpoint"`
	APIVersion      string `yaml:"api_version"`
	ChatDeployment  string `yaml:"chat_deployment"`
	ImageDeployment string `yaml:"image_deployment"`
}

const (
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultGeminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	defaultAnthropicVersion = "2023-06-01"
	defaultAzureAPIVersion  = "2024-02-01"
)

// Load reads YAML configuration from disk, expands environment references
// and validates the result.
func Load(path string) (Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", absPath, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills empty endpoint fields with the public vendor defaults.
func (c *Config) ApplyDefaults() {
	if c.Vendors.OpenAI.BaseURL == "" {
		c.Vendors.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	if c.Vendors.Gemini.BaseURL == "" {
		c.Vendors.Gemini.BaseURL = defaultGeminiBaseURL
	}
	if c.Vendors.Anthropic.BaseURL == "" {
		c.Vendors.Anthropic.BaseURL = defaultAnthropicBaseURL
	}
	if c.Vendors.Anthropic.APIVersion == "" {
		c.Vendors.Anthropic.APIVersion = defaultAnthropicVersion
	}
	if c.Vendors.Azure.APIVersion == "" {
		c.Vendors.Azure.APIVersion = defaultAzureAPIVersion
	}
}

// Validate performs sanity checks on the configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}
	for _, origin := range c.Server.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("server.allowed_origins must not contain empty entries")
		}
	}
	return nil
}

// expandEnv substitutes ${VAR} references, leaving unset variables empty so
// an absent key reads as unconfigured rather than as the literal reference.
func expandEnv(raw string) string {
	return os.Expand(raw, func(name string) string {
		return os.Getenv(name)
	})
}
