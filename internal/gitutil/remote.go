package gitutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
)

// ErrRepoNameDetection is returned when no remote of a local checkout yields
// an owner/repo pair.
var ErrRepoNameDetection = errors.New("cannot detect repo name from remotes")

// ResolveRepoFullName opens the git repository at path and extracts
// "owner/repo" from its remotes (HTTPS or SSH form).
func ResolveRepoFullName(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("failed to open git repository at %s: %w", path, err)
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return "", fmt.Errorf("remotes: %w", err)
	}
	for _, r := range remotes {
		if len(r.Config().URLs) == 0 {
			continue
		}
		if name, ok := parseRemoteURL(r.Config().URLs[0]); ok {
			return name, nil
		}
	}
	return "", ErrRepoNameDetection
}

func parseRemoteURL(raw string) (string, bool) {
	// HTTPS: https://github.com/owner/repo.git
	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		name := strings.TrimSuffix(strings.TrimPrefix(u.Path, "/"), ".git")
		if strings.Count(name, "/") == 1 {
			return name, true
		}
		return "", false
	}
	// SSH: git@github.com:owner/repo.git
	if strings.Contains(raw, "@") && strings.Contains(raw, ":") {
		parts := strings.SplitN(raw, ":", 2)
		if len(parts) == 2 {
			name := strings.TrimSuffix(parts[1], ".git")
			if strings.Count(name, "/") == 1 {
				return name, true
			}
		}
	}
	return "", false
}
