package core

// RepoConfig is per-repository review configuration, read from a
// .review-relay.yml file in the repository root when one exists.
type RepoConfig struct {
	// Enabled switches reviews off for the repository when set to false.
	Enabled *bool `yaml:"enabled"`

	// MaxDiffBytes truncates the diff sent to the model when positive.
	// Zero means no cap.
	MaxDiffBytes int `yaml:"max_diff_bytes"`

	// Guidelines are extra instruction lines appended to the review prompt.
	Guidelines []string `yaml:"guidelines"`
}

// DefaultRepoConfig returns the configuration used when a repository has no
// config file: reviews enabled, uncapped diff, no extra guidelines.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{}
}

// IsEnabled reports whether reviews are enabled; absent means enabled.
func (c *RepoConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
