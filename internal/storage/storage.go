// Package storage archives generated report files locally or in Azure
// Blob Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/config"
)

// Storage defines the interface for report archive operations.
// Reports are keyed by name so a re-run replaces the previous artifact.
type Storage interface {
	Upload(ctx context.Context, name string, contentType string, data io.Reader) (int64, error)
	Download(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// NewStorage creates a storage instance based on configuration.
// For local mode, reports are written to the local filesystem.
// For cloud/azure mode, reports are uploaded to Azure Blob Storage.
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalStorage(cfg.LocalBasePath)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// LocalStorage implements Storage on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Upload writes a report under its name, replacing any previous version
func (s *LocalStorage) Upload(ctx context.Context, name string, contentType string, data io.Reader) (int64, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, data)
	if err != nil {
		os.Remove(fullPath)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return size, nil
}

// Download opens a stored report
func (s *LocalStorage) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("report not found: %s", name)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a stored report
func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	fullPath, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// resolve keeps report paths inside the base directory
func (s *LocalStorage) resolve(name string) (string, error) {
	clean := filepath.Clean("/" + name)
	if clean == "/" || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid report name: %s", name)
	}
	return filepath.Join(s.basePath, clean), nil
}
