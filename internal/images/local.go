// Package images implements sinks for harvested product imagery.
package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalConfig captures the parameters for the local filesystem image sink.
type LocalConfig struct {
	// BaseDir is the root directory where images will be stored.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// LocalSink writes images to the local filesystem. Object names are content
// addressed by the caller, so an existing file is never rewritten.
type LocalSink struct {
	baseDir string
}

// NewLocalSink creates a filesystem-backed image sink.
func NewLocalSink(cfg LocalConfig) (*LocalSink, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
				return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
			}
		} else {
			return nil, fmt.Errorf("failed to stat base directory: %w", err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	return &LocalSink{baseDir: cfg.BaseDir}, nil
}

// Store writes data under the suggested name and returns a file:// reference.
// A name that already exists is left untouched and its reference returned.
func (s *LocalSink) Store(_ context.Context, data []byte, suggestedName string) (string, error) {
	if strings.TrimSpace(suggestedName) == "" {
		return "", fmt.Errorf("object name is required")
	}

	fullPath := filepath.Join(s.baseDir, suggestedName)
	cleanBase := filepath.Clean(s.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}

	ref := "file://" + fullPath
	if _, err := os.Stat(fullPath); err == nil {
		return ref, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat image file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("failed to create parent directories: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return ref, nil
}
