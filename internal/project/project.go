// Package project locates project roots and loads their build
// configuration. The filesystem is injected so tests run against an
// in-memory fs.
package project

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/vigild/vigil/common"
)

// ConfigFilename is the per-project configuration file, looked up at
// the project root.
const ConfigFilename = ".vigil.yaml"

// DefaultIndicators are the files whose presence marks a directory as a
// project root.
var DefaultIndicators = []string{ConfigFilename, ".git", "go.mod", "setup.py"}

// ErrNotProject is returned when no recognizable project root exists
// above the start directory.
var ErrNotProject = errors.New("not a project directory")

// FindRoot walks up from start until it finds a directory containing
// one of the indicator entries. Passing nil indicators uses
// DefaultIndicators.
func FindRoot(fs afero.Fs, start string, indicators []string) (string, error) {
	if len(indicators) == 0 {
		indicators = DefaultIndicators
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	for {
		for _, name := range indicators {
			ok, err := afero.Exists(fs, filepath.Join(dir, name))
			if err != nil {
				return "", fmt.Errorf("probing %s: %w", dir, err)
			}
			if ok {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s: %w", start, ErrNotProject)
		}
		dir = parent
	}
}

// Name derives the project registry key from a working directory: its
// trailing path component.
func Name(workingDir string) string {
	return filepath.Base(filepath.Clean(workingDir))
}

// LoadConfig reads and validates the project's config file at root.
func LoadConfig(fs afero.Fs, root string) (common.ProjectConfig, error) {
	var cfg common.ProjectConfig

	data, err := afero.ReadFile(fs, filepath.Join(root, ConfigFilename))
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", ConfigFilename, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", ConfigFilename, err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ValidateConfig checks the required config keys. BuildTimeout may be
// zero: the project builds immediately after every change event.
func ValidateConfig(cfg common.ProjectConfig) error {
	if len(cfg.Script) == 0 {
		return errors.New("config: script is required")
	}
	if cfg.BuildTimeout < 0 {
		return errors.New("config: build_timeout cannot be negative")
	}
	return nil
}
