// Command depscan runs a one-shot analysis over a repository list file and
// writes the report files to a local directory. It is the batch counterpart
// to the API server and shares the same analysis pipeline.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/analyzer"
	"github.com/depscan-io/depscan/internal/config"
	"github.com/depscan-io/depscan/internal/gitrepo"
	"github.com/depscan-io/depscan/internal/logger"
	"github.com/depscan-io/depscan/internal/registry"
	"github.com/depscan-io/depscan/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	urls, err := readRepoList(cfg.Analyzer.ReposFile)
	if err != nil {
		return fmt.Errorf("failed to read repository list: %w", err)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no repositories listed in %s", cfg.Analyzer.ReposFile)
	}

	mappings, err := analyzer.LoadMappingCSV(cfg.Analyzer.MappingFile)
	if err != nil {
		return fmt.Errorf("failed to load license mappings: %w", err)
	}
	log.Info("loaded license mappings",
		zap.String("file", cfg.Analyzer.MappingFile),
		zap.Int("count", mappings.Len()))

	// Without an explicit work dir, clones go into a scratch directory that
	// is removed when the run finishes.
	cleanupWorkDir := false
	if cfg.Analyzer.WorkDir == "" {
		workDir, err := os.MkdirTemp("", "depscan-")
		if err != nil {
			return fmt.Errorf("failed to create work directory: %w", err)
		}
		cfg.Analyzer.WorkDir = workDir
		cleanupWorkDir = !cfg.Analyzer.KeepWorkDir
	}
	if cleanupWorkDir {
		defer os.RemoveAll(cfg.Analyzer.WorkDir)
	}

	cloner := gitrepo.NewCloner(&cfg.Analyzer, log)
	registryClient := registry.NewClient(&cfg.Registry, log)
	pipeline := analyzer.New(cloner, registryClient, mappings, cfg, log)

	start := time.Now()
	log.Info("starting analysis",
		zap.Int("repositories", len(urls)),
		zap.String("work_dir", cfg.Analyzer.WorkDir))

	reports := pipeline.AnalyzeAll(ctx, urls)

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			log.Warn("repository analysis failed",
				zap.String("url", r.URL),
				zap.Error(r.Err))
		}
	}

	log.Info("analysis finished",
		zap.Int("repositories", len(reports)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))

	if err := writeReports(cfg, reports, log); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d repositories failed", failed, len(reports))
	}
	return nil
}

// readRepoList reads one repository URL per line, skipping blanks and
// lines starting with #.
func readRepoList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

func writeReports(cfg *config.Config, reports []analyzer.RepoReport, log *zap.Logger) error {
	if err := os.MkdirAll(cfg.Reports.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	now := time.Now().UTC()
	artifacts := []struct {
		name   string
		render func(f *os.File) error
	}{
		{"dependencies.csv", func(f *os.File) error {
			return report.WriteDependencyCSV(f, reports)
		}},
		{"dependencies.md", func(f *os.File) error {
			return report.WriteDependencyMarkdown(f, reports, now)
		}},
		{"missing-mappings.csv", func(f *os.File) error {
			return report.WriteMissingMappingCSV(f, reports)
		}},
		{"infrastructure.md", func(f *os.File) error {
			return report.WriteInfraMarkdown(f, reports, cfg.Reports.InfraPreamblePath, now)
		}},
	}

	for _, artifact := range artifacts {
		path := filepath.Join(cfg.Reports.OutputDir, artifact.name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", artifact.name, err)
		}
		if err := artifact.render(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", artifact.name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", artifact.name, err)
		}
		log.Info("wrote report", zap.String("path", path))
	}

	missing := analyzer.MissingMappings(reports)
	if len(missing) > 0 {
		log.Info("packages without a resolved license",
			zap.Int("count", len(missing)),
			zap.String("template", filepath.Join(cfg.Reports.OutputDir, "missing-mappings.csv")))
	}

	return nil
}
