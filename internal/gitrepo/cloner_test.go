package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/depscan-io/depscan/internal/gitrepo"
)

func TestRepoName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/org/svc", "svc"},
		{"https://github.com/org/svc.git", "svc"},
		{"https://github.com/org/svc/", "svc"},
		{"git@github.com:org/svc.git", "svc"},
		{"svc", "svc"},
		{"", "repo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gitrepo.RepoName(tt.url), tt.url)
	}
}
