package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	ErrRepoConfigNotFound = errors.New("repo config file not found")
	ErrRepoConfigParsing  = errors.New("repo config parsing failed")
)

// RepoConfig holds per-repository overrides read from the working tree's
// .docpipeline.yml, layered on top of the process-wide Document config.
type RepoConfig struct {
	EnableSmartFilter *bool    `yaml:"enable_smart_filter,omitempty"`
	CatalogueFormat   string   `yaml:"catalogue_format,omitempty"`
	IgnoreAdditional  []string `yaml:"ignore_additional,omitempty"`
}

// DefaultRepoConfig returns a RepoConfig with no overrides set; every field
// is left to the process-wide Document config.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{}
}

// LoadRepoConfig loads and parses the .docpipeline.yml file from a
// repository's working tree, if present.
func LoadRepoConfig(repoPath string) (*RepoConfig, error) {
	configPath := filepath.Join(repoPath, ".docpipeline.yml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRepoConfig(), ErrRepoConfigNotFound
		}
		return nil, fmt.Errorf("failed to read .docpipeline.yml: %w", err)
	}

	cfg := DefaultRepoConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepoConfigParsing, err)
	}
	return cfg, nil
}
