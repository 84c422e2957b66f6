// Package projectfinder locates a sepsolve project and reads its
// sepsolve.yaml.
package projectfinder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
)

const (
	ConfigFile = "sepsolve.yaml"
	// EnvProject pins the project root, bypassing the upward search.
	EnvProject = "SEPSOLVE_PROJECT"
)

type Finder struct {
	ConfigFile string
	// Env names the variable consulted before searching; empty disables it.
	Env string
}

func NewFinder() *Finder {
	return &Finder{ConfigFile: ConfigFile, Env: EnvProject}
}

var _ ports.ProjectLocator = (*Finder)(nil)

// FindRoot returns the nearest directory at or above startDir holding the
// config file. A root pinned through the environment wins, but must hold
// the config file itself.
func (f *Finder) FindRoot(startDir string) (string, error) {
	if pinned := f.pinned(); pinned != "" {
		if !f.isRoot(pinned) {
			return "", &domain.OpError{Op: "projectfinder.findroot", Kind: domain.KindNotFound, Path: pinned, Err: domain.ErrNotFound}
		}
		return pinned, nil
	}

	if startDir == "" {
		return "", &domain.OpError{Op: "projectfinder.findroot", Kind: domain.KindInvalidConfig, Err: errors.New("startDir is empty")}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{Op: "projectfinder.findroot", Kind: domain.KindExecution, Err: err}
	}
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	for cur := abs; ; cur = filepath.Dir(cur) {
		if f.isRoot(cur) {
			return cur, nil
		}
		if filepath.Dir(cur) == cur {
			return "", &domain.OpError{Op: "projectfinder.findroot", Kind: domain.KindNotFound, Path: abs, Err: domain.ErrNotFound}
		}
	}
}

func (f *Finder) pinned() string {
	if f.Env == "" {
		return ""
	}
	v := strings.TrimSpace(os.Getenv(f.Env))
	if v == "" {
		return ""
	}
	if abs, err := filepath.Abs(v); err == nil {
		return abs
	}
	return filepath.Clean(v)
}

func (f *Finder) isRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, f.ConfigFile))
	return err == nil && !info.IsDir()
}
