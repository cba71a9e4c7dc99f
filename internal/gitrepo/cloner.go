// Package gitrepo clones repositories for analysis and cleans them up
// afterwards.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/config"
)

// Cloner performs shallow clones into a shared work directory
type Cloner struct {
	workDir string
	token   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewCloner(cfg *config.AnalyzerConfig, logger *zap.Logger) *Cloner {
	return &Cloner{
		workDir: cfg.WorkDir,
		token:   cfg.GitToken,
		timeout: cfg.CloneTimeoutDuration(),
		logger:  logger,
	}
}

// RepoName derives a directory-safe name from a clone URL
func RepoName(url string) string {
	name := strings.TrimSuffix(url, ".git")
	name = strings.TrimSuffix(name, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		name = "repo"
	}
	return name
}

// Clone checks the repository out at depth 1 and returns the local path.
// An existing checkout from a previous run is reused as is.
func (c *Cloner) Clone(ctx context.Context, url string) (string, error) {
	dest := filepath.Join(c.workDir, RepoName(url))

	if _, err := os.Stat(filepath.Join(dest, ".git")); err == nil {
		c.logger.Info("reusing existing checkout", zap.String("path", dest))
		return dest, nil
	}

	if err := os.MkdirAll(c.workDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}

	cloneCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		cloneCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	opts := &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if c.token != "" {
		opts.Auth = &http.BasicAuth{Username: "x-access-token", Password: c.token}
	}

	c.logger.Info("cloning repository", zap.String("url", url), zap.String("path", dest))
	if _, err := git.PlainCloneContext(cloneCtx, dest, false, opts); err != nil {
		Cleanup(dest)
		return "", fmt.Errorf("failed to clone %s: %w", url, err)
	}

	return dest, nil
}

// Cleanup removes a checkout. Read-only object files from the git store are
// made writable first, and the removal is retried once for good measure.
func Cleanup(path string) {
	if path == "" || path == "/" {
		return
	}
	if err := os.RemoveAll(path); err == nil {
		return
	}

	_ = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			_ = os.Chmod(p, 0o755)
		} else {
			_ = os.Chmod(p, 0o644)
		}
		return nil
	})
	_ = os.RemoveAll(path)
}
