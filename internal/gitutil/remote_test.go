package gitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"https with .git", "https://github.com/acme/widgets.git", "acme/widgets", true},
		{"https without .git", "https://github.com/acme/widgets", "acme/widgets", true},
		{"ssh", "git@github.com:acme/widgets.git", "acme/widgets", true},
		{"ssh without .git", "git@github.com:acme/widgets", "acme/widgets", true},
		{"https with extra path", "https://github.com/acme/widgets/tree/main", "", false},
		{"not a remote", "/local/path/repo", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRemoteURL(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
