// Package manifest handles sable.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a sable.toml project configuration.
type Manifest struct {
	Project  Project  `toml:"project"`
	Source   Source   `toml:"source"`
	Bytecode Bytecode `toml:"bytecode"`

	// Dir is the directory containing the sable.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs  []string `toml:"dirs"`
	Entry string   `toml:"entry"`
}

// Bytecode configures compiler output.
type Bytecode struct {
	// Output is the path the compiled image is written to, relative to Dir.
	Output string `toml:"output"`

	// Debug keeps position tables in the emitted image.
	Debug bool `toml:"debug"`

	// RegisterMode lowers chunks to register form before emitting.
	RegisterMode bool `toml:"register-mode"`

	// Cache is the compiled-image cache database, relative to Dir.
	// Empty disables caching.
	Cache string `toml:"cache-path"`
}

// Load parses a sable.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "sable.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if m.Bytecode.Output == "" {
		m.Bytecode.Output = filepath.Join("build", m.Project.Name+".sblc")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a sable.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "sable.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks for required fields.
func (m *Manifest) Validate() error {
	if m.Project.Name == "" {
		return fmt.Errorf("sable.toml: project.name is required")
	}
	return nil
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// OutputPath returns the absolute path of the compiled image.
func (m *Manifest) OutputPath() string {
	return filepath.Join(m.Dir, m.Bytecode.Output)
}

// CachePath returns the absolute path of the image cache database, or
// empty when caching is disabled.
func (m *Manifest) CachePath() string {
	if m.Bytecode.Cache == "" {
		return ""
	}
	return filepath.Join(m.Dir, m.Bytecode.Cache)
}
