// Package models defines data structures shared by the crawler, the stores and the aggregator.
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AliasRule rewrites a grain name matching Pattern (a case-insensitive regular expression).
type AliasRule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// VocabularyConfig extends the normalizer's built-in vocabulary.
// Runtime crawl settings come from CLI flags; only word lists live in a file.
type VocabularyConfig struct {
	Exclusions   []string    `yaml:"exclusions"`
	HopVarieties []string    `yaml:"hop_varieties"`
	GrainAliases []AliasRule `yaml:"grain_aliases"`
}

// LoadConfig reads a YAML vocabulary file.
func LoadConfig(path string) (*VocabularyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg VocabularyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}
