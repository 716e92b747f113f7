package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/avoronov/review-relay/internal/core"
)

// RepoConfigFileName is looked up at the PR head via the contents API.
const RepoConfigFileName = ".review-relay.yml"

// ErrRepoConfigParsing marks an unparsable repository config file.
var ErrRepoConfigParsing = errors.New("repo config parsing failed")

// ParseRepoConfig parses the contents of a .review-relay.yml file. Unknown
// keys are ignored; absent keys keep their defaults.
func ParseRepoConfig(data []byte) (*core.RepoConfig, error) {
	config := core.DefaultRepoConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepoConfigParsing, err)
	}
	return config, nil
}
