// Package registry resolves license and homepage metadata for dependencies
// from the public package registries (PyPI, npm, Maven Central, NuGet).
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/depscan-io/depscan/internal/config"
	"github.com/depscan-io/depscan/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Info is the metadata a registry reports for a package
type Info struct {
	License string
	URL     string
}

// Client queries package registries with a global concurrency bound and a
// polite per-request delay. Base URLs are fields so tests can point the
// client at a local server.
type Client struct {
	PyPIBaseURL  string
	NPMBaseURL   string
	MavenBaseURL string
	NuGetBaseURL string

	http   *http.Client
	sem    *semaphore.Weighted
	delay  time.Duration
	logger *zap.Logger
}

// NewClient creates a registry client from configuration
func NewClient(cfg *config.RegistryConfig, logger *zap.Logger) *Client {
	maxCalls := cfg.MaxConcurrentCalls
	if maxCalls < 1 {
		maxCalls = 10
	}
	return &Client{
		PyPIBaseURL:  "https://pypi.org",
		NPMBaseURL:   "https://registry.npmjs.org",
		MavenBaseURL: "https://search.maven.org",
		NuGetBaseURL: "https://api.nuget.org",
		http: &http.Client{
			Timeout: cfg.RequestTimeoutDuration(),
		},
		sem:    semaphore.NewWeighted(int64(maxCalls)),
		delay:  cfg.RequestDelay(),
		logger: logger,
	}
}

// Lookup resolves metadata for a dependency in the given ecosystem.
// A transport or HTTP-level failure returns an error; a registry that
// answers but has no license information returns Info{License: "Unknown"}.
func (c *Client) Lookup(ctx context.Context, eco domain.Ecosystem, name string) (Info, error) {
	switch eco {
	case domain.EcosystemPython:
		return c.pythonInfo(ctx, name)
	case domain.EcosystemJavaScript:
		return c.javascriptInfo(ctx, name)
	case domain.EcosystemJava:
		return c.javaInfo(ctx, name)
	case domain.EcosystemDotNet:
		return c.dotnetInfo(ctx, name)
	default:
		return Info{}, fmt.Errorf("unsupported ecosystem: %s", eco)
	}
}

// getJSON performs a bounded GET and decodes the JSON body into target
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.sem.Release(1)

	// Be nice to the APIs
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("registry request for %s returned status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode registry response: %w", err)
	}
	return nil
}
