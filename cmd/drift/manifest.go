package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const noDriftTomlMessage = "no drift.toml found\nplease specify the target explicitly, e.g.:\n  drift check path/to/module"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package packageConfig `toml:"package"`
	Check   checkConfig   `toml:"check"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type checkConfig struct {
	// Root is the directory (or single .mir file) to check, relative to the
	// manifest. Defaults to the manifest directory itself.
	Root   string `toml:"root"`
	NoFold bool   `toml:"no_fold"`
}

func findDriftToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "drift.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findDriftToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return projectConfig{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [package].name", path)
	}
	return cfg, nil
}

// resolveCheckTarget maps [check].root onto a real path and validates it.
func resolveCheckTarget(manifest *projectManifest) (string, error) {
	if manifest == nil {
		return "", fmt.Errorf("missing project manifest")
	}
	root := strings.TrimSpace(manifest.Config.Check.Root)
	if root == "" {
		return manifest.Root, nil
	}
	target := filepath.Join(manifest.Root, filepath.FromSlash(root))
	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: [check].root path does not exist: %s", manifest.Path, target)
		}
		return "", fmt.Errorf("%s: failed to stat [check].root: %w", manifest.Path, err)
	}
	if !info.IsDir() && filepath.Ext(target) != ".mir" {
		return "", fmt.Errorf("%s: [check].root must be a .mir file or directory", manifest.Path)
	}
	return target, nil
}
