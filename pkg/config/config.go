// Package config manages project configuration for the script generation
// pipeline. Configuration lives in <projectDir>/.scriptforge/config.json and
// API keys are resolved from an encrypted secrets file or the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider name constants.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
)

// ProjectConfigDir is the per-project directory holding config and secrets.
const ProjectConfigDir = ".scriptforge"

// Environment variable names for provider API keys.
const (
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvGoogleKey    = "GEMINI_API_KEY"
)

// FatalError is a configuration problem the pipeline cannot degrade around,
// such as a missing API key. Every other failure mode produces degraded
// output instead of an error.
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string {
	return "fatal configuration error: " + e.Reason
}

// Fatalf creates a FatalError with a formatted reason.
func Fatalf(format string, args ...any) *FatalError {
	return &FatalError{Reason: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err is (or wraps) a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// ModelsConfig names the model used for each pipeline role. Roles may point
// at different providers; the provider is inferred from the model name.
type ModelsConfig struct {
	Researcher string `json:"researcher"`
	Selector   string `json:"selector"`
	Planner    string `json:"planner"`
	Writer     string `json:"writer"`
	Critic     string `json:"critic"`
}

// StorageConfig holds persistence paths.
type StorageConfig struct {
	DBPath string `json:"db_path"`
}

// Config is the complete project configuration.
type Config struct {
	Models     *ModelsConfig  `json:"models"`
	Storage    *StorageConfig `json:"storage"`
	PolicyPath string         `json:"policy_path,omitempty"`
	OllamaHost string         `json:"ollama_host,omitempty"`
}

// ModelInfo contains provider and output-limit information for known models.
type ModelInfo struct {
	Provider        string
	MaxOutputTokens int
}

// KnownModels registry is optional; unknown models are inferred via
// ProviderPatterns.
//
//nolint:gochecknoglobals // Intentional global for static model registry
var KnownModels = map[string]ModelInfo{
	"claude-sonnet-4-5":        {Provider: ProviderAnthropic, MaxOutputTokens: 8192},
	"claude-sonnet-4-20250514": {Provider: ProviderAnthropic, MaxOutputTokens: 8192},
	"claude-opus-4-1":          {Provider: ProviderAnthropic, MaxOutputTokens: 16384},
	"gpt-4o":                   {Provider: ProviderOpenAI, MaxOutputTokens: 4096},
	"gpt-5":                    {Provider: ProviderOpenAI, MaxOutputTokens: 4096},
	"o4-mini":                  {Provider: ProviderOpenAI, MaxOutputTokens: 16384},
	"gemini-2.5-flash":         {Provider: ProviderGoogle, MaxOutputTokens: 65536},
	"gemini-2.0-flash":         {Provider: ProviderGoogle, MaxOutputTokens: 8192},
}

// ProviderPattern represents a pattern for inferring provider from model name.
type ProviderPattern struct {
	Prefix   string
	Provider string
}

// ProviderPatterns defines rules for inferring providers from unknown model
// names, so new models work without code changes.
//
//nolint:gochecknoglobals // Intentional global for inference rules
var ProviderPatterns = []ProviderPattern{
	{"claude", ProviderAnthropic},
	{"gpt", ProviderOpenAI},
	{"o1", ProviderOpenAI},
	{"o3", ProviderOpenAI},
	{"o4", ProviderOpenAI},
	{"gemini", ProviderGoogle},
	{"phi", ProviderOllama},
	{"llama", ProviderOllama},
	{"qwen", ProviderOllama},
	{"mistral", ProviderOllama},
	{"deepseek", ProviderOllama},
	{"ollama:", ProviderOllama},
}

// GetModelProvider returns the API provider for a given model. First checks
// KnownModels, then tries pattern matching. An unmappable model is fatal.
func GetModelProvider(modelName string) (string, error) {
	if info, exists := KnownModels[modelName]; exists {
		return info.Provider, nil
	}
	for i := range ProviderPatterns {
		if strings.HasPrefix(modelName, ProviderPatterns[i].Prefix) {
			return ProviderPatterns[i].Provider, nil
		}
	}
	return "", Fatalf("unknown model %q: no known provider mapping or pattern match", modelName)
}

// APIKeyFor resolves the API key for a provider using secrets-file then
// environment precedence. Ollama requires no key. A missing key is the fatal
// configuration error of the pipeline contract.
func APIKeyFor(provider string) (string, error) {
	var envName string
	switch provider {
	case ProviderAnthropic:
		envName = EnvAnthropicKey
	case ProviderOpenAI:
		envName = EnvOpenAIKey
	case ProviderGoogle:
		envName = EnvGoogleKey
	case ProviderOllama:
		return "", nil
	default:
		return "", Fatalf("unknown provider %q", provider)
	}

	key, err := GetSecret(envName)
	if err != nil {
		return "", Fatalf("no API key for provider %s: set %s in the environment or secrets file", provider, envName)
	}
	return key, nil
}

// Load reads the configuration from <projectDir>/.scriptforge/config.json.
//
// Behavior:
// - Missing file: creates a new config with defaults and saves it
// - Existing file: loads and validates, applying defaults for missing fields
// - Unparseable file: returns an error to avoid overwriting user changes
func Load(projectDir string) (*Config, error) {
	if projectDir == "" {
		projectDir = "."
	}
	configPath := filepath.Join(projectDir, ProjectConfigDir, "config.json")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := Save(cfg, projectDir); err != nil {
			return nil, fmt.Errorf("failed to save initial config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config file exists but cannot be parsed (to avoid overwriting your changes): %w", err)
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to <projectDir>/.scriptforge/config.json.
func Save(cfg *Config, projectDir string) error {
	dir := filepath.Join(projectDir, ProjectConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that every configured model maps to a provider.
func Validate(cfg *Config) error {
	if cfg.Models == nil {
		return Fatalf("models section missing")
	}
	roles := map[string]string{
		"researcher": cfg.Models.Researcher,
		"selector":   cfg.Models.Selector,
		"planner":    cfg.Models.Planner,
		"writer":     cfg.Models.Writer,
		"critic":     cfg.Models.Critic,
	}
	for role, model := range roles {
		if model == "" {
			return Fatalf("no model configured for role %s", role)
		}
		if _, err := GetModelProvider(model); err != nil {
			return fmt.Errorf("invalid %s model: %w", role, err)
		}
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Models: &ModelsConfig{
			Researcher: "claude-sonnet-4-5",
			Selector:   "claude-sonnet-4-5",
			Planner:    "claude-sonnet-4-5",
			Writer:     "claude-sonnet-4-5",
			Critic:     "claude-sonnet-4-5",
		},
		Storage:    &StorageConfig{DBPath: filepath.Join(ProjectConfigDir, "scriptforge.db")},
		OllamaHost: "http://localhost:11434",
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.Models == nil {
		cfg.Models = def.Models
	} else {
		if cfg.Models.Researcher == "" {
			cfg.Models.Researcher = def.Models.Researcher
		}
		if cfg.Models.Selector == "" {
			cfg.Models.Selector = def.Models.Selector
		}
		if cfg.Models.Planner == "" {
			cfg.Models.Planner = def.Models.Planner
		}
		if cfg.Models.Writer == "" {
			cfg.Models.Writer = def.Models.Writer
		}
		if cfg.Models.Critic == "" {
			cfg.Models.Critic = def.Models.Critic
		}
	}
	if cfg.Storage == nil {
		cfg.Storage = def.Storage
	} else if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = def.Storage.DBPath
	}
	if cfg.OllamaHost == "" {
		cfg.OllamaHost = def.OllamaHost
	}
}
