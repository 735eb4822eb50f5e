// Package config loads the site configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the persistent site configuration.
type Config struct {
	// Site identity
	Title   string `yaml:"title"`
	BaseURL string `yaml:"base_url"` // origin of the published site

	// Paths. DataDir holds the database and logs; OutputDir receives the
	// static export.
	DataDir   string `yaml:"data_dir"`
	OutputDir string `yaml:"output_dir"`

	// Feeds to import from.
	Feeds []FeedConfig `yaml:"feeds"`
}

// FeedConfig describes one remote feed.
type FeedConfig struct {
	Name string   `yaml:"name"`
	URL  string   `yaml:"url"`
	Lang string   `yaml:"lang"` // language code applied to imported posts
	Tags []string `yaml:"tags"` // tags applied to imported posts
}

// Default returns sensible defaults rooted in the user's home directory.
func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".gazette")
	return &Config{
		Title:     "Gazette",
		BaseURL:   "http://localhost:8000",
		DataDir:   dataDir,
		OutputDir: filepath.Join(dataDir, "public"),
		Feeds:     []FeedConfig{},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gazette", "config.yaml")
}

// Load reads config from path, or returns defaults when the file does not
// exist. A malformed file is an error; silently falling back could publish
// to the wrong place.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
