package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Store      Store      `yaml:"store"`
	Adapters   []Adapter  `yaml:"adapters"`
	Collect    Collect    `yaml:"collect"`
	Extraction Extraction `yaml:"extraction"`
	Server     Server     `yaml:"server"`
}

// Store selects the tabular-store backend holding the shared sheets.
type Store struct {
	Backend string `yaml:"backend"` // "sqlite" or "xlsx"
	Path    string `yaml:"path"`
}

// Adapter declares one site adapter. Kind selects the generic
// implementation; a bad declaration excludes only that adapter.
type Adapter struct {
	Name  string `yaml:"name"`
	Group string `yaml:"group"`
	Kind  string `yaml:"kind"` // "feed" or "html"
	URL   string `yaml:"url"`

	// html kind only: CSS selectors for the listing page.
	ItemSelector  string `yaml:"item_selector"`
	TitleSelector string `yaml:"title_selector"`
	LinkSelector  string `yaml:"link_selector"`
}

type Collect struct {
	MinDays  int     `yaml:"min_days"`
	Workers  int     `yaml:"workers"`
	MaxValue float64 `yaml:"max_value"`
}

type Extraction struct {
	Provider    string  `yaml:"provider"` // "perplexity", "openai", or "ollama"
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	OllamaURL   string  `yaml:"ollama_url"`
	OllamaModel string  `yaml:"ollama_model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type Server struct {
	Port int `yaml:"port"`
}

// ConfigDir returns the XDG config directory for grantwatch.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "grantwatch")
}

// DataDir returns the XDG data directory for grantwatch.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "grantwatch")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/grantwatch/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'grantwatch init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Store: Store{Backend: "sqlite"},
		Collect: Collect{
			MinDays: 21,
			Workers: 4,
		},
		Extraction: Extraction{
			Provider:    "perplexity",
			Model:       "sonar",
			BaseURL:     "https://api.perplexity.ai",
			APIKeyEnv:   "PERPLEXITY_API_KEY",
			OllamaURL:   "http://localhost:11434",
			OllamaModel: "qwen2.5:7b",
			MaxTokens:   4000,
			Temperature: 0.1,
		},
		Server: Server{Port: 8000},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// StorePath returns the effective store file path, defaulting into the XDG
// data directory with an extension matching the backend.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	name := "grantwatch.db"
	if c.Store.Backend == "xlsx" {
		name = "grantwatch.xlsx"
	}
	return filepath.Join(DataDir(), name)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
