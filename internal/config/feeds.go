package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"daily-digest/internal/domain/entity"
)

// FeedsConfig is the YAML shape of the feed source list.
type FeedsConfig struct {
	Feeds []entity.Source `yaml:"feeds"`
}

// DefaultSources returns the built-in feed list used when no feeds file is
// given.
func DefaultSources() []entity.Source {
	return []entity.Source{
		{Name: "BBC World", URL: "http://feeds.bbci.co.uk/news/world/rss.xml"},
		{Name: "Reuters World", URL: "http://feeds.reuters.com/reuters/worldNews"},
		{Name: "Hacker News", URL: "https://hnrss.org/frontpage"},
	}
}

// LoadSources loads the feed source list from a YAML file.
// An empty path returns the built-in defaults. Every source must carry a
// valid feed URL; an empty list is a configuration error.
// The path is expected to come from a trusted source (command-line argument).
func LoadSources(path string) ([]entity.Source, error) {
	if path == "" {
		return DefaultSources(), nil
	}

	// #nosec G304 -- path is provided by trusted source (CLI arg), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var cfg FeedsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}

	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("feeds file %s lists no feeds", path)
	}

	for i, src := range cfg.Feeds {
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("feed %d: %w", i+1, err)
		}
	}

	return cfg.Feeds, nil
}
