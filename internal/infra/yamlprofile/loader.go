// Package yamlprofile resolves solver profiles: built-in presets or
// profiles/<name>.yaml files, with an optional <name>.local.yaml overlay.
package yamlprofile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/config"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
	"gopkg.in/yaml.v3"
)

const localSuffix = ".local"

type Loader struct {
	rootDir     string
	profilesDir string
}

type Option func(*Loader)

func WithProfilesDir(dir string) Option {
	return func(l *Loader) { l.profilesDir = dir }
}

func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		rootDir:     root,
		profilesDir: "profiles",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.ProfileLoader = (*Loader)(nil)

// LoadProfile accepts a profile name (e.g., "quick"), a built-in preset name
// or a full path to a YAML file. A profile file wins over a preset of the
// same name.
func (l *Loader) LoadProfile(nameOrPath string) (domain.SolverConfig, error) {
	path := l.Path(nameOrPath)

	if !isPath(nameOrPath) && isPreset(nameOrPath) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return domain.DefaultSolverConfig().WithPreset(nameOrPath)
		}
	}

	base, err := readProfile(path)
	if err != nil {
		return domain.SolverConfig{}, err
	}

	// The local overlay is optional; its solver keys override the base.
	localPath := strings.TrimSuffix(path, filepath.Ext(path)) + localSuffix + filepath.Ext(path)
	local, err := readProfileOptional(localPath)
	if err != nil {
		return domain.SolverConfig{}, err
	}

	merged := base
	merged.Solver = map[string]any{}
	for k, v := range base.Solver {
		merged.Solver[k] = v
	}
	for k, v := range local.Solver {
		merged.Solver[k] = v
	}
	if strings.TrimSpace(local.Preset) != "" {
		merged.Preset = local.Preset
	}

	return config.MapProfile(path, merged)
}

// Path maps a profile name to its file; paths are returned cleaned.
func (l *Loader) Path(nameOrPath string) string {
	if isPath(nameOrPath) {
		return filepath.Clean(nameOrPath)
	}
	return filepath.Join(l.rootDir, l.profilesDir, nameOrPath+".yaml")
}

// ListProfiles returns the profile files under root, skipping local overlays.
func (l *Loader) ListProfiles(root string) ([]domain.ProfileRef, error) {
	dir := filepath.Join(root, l.profilesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlprofile.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.ProfileRef
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.HasSuffix(stem, localSuffix) {
			continue
		}
		refs = append(refs, domain.ProfileRef{Name: stem, Path: filepath.Join(dir, name)})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func isPath(s string) bool {
	return strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml") || strings.ContainsRune(s, filepath.Separator)
}

func isPreset(name string) bool {
	for _, p := range domain.Presets() {
		if p == strings.ToLower(strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

func readProfile(path string) (config.YAMLProfile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return config.YAMLProfile{}, &domain.OpError{
			Op:   "yamlprofile.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y config.YAMLProfile
	if err := yaml.Unmarshal(b, &y); err != nil {
		return config.YAMLProfile{}, &domain.OpError{
			Op:   "yamlprofile.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return y, nil
}

func readProfileOptional(path string) (config.YAMLProfile, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.YAMLProfile{}, nil
		}
		return config.YAMLProfile{}, &domain.OpError{
			Op:   "yamlprofile.local",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	y, err := readProfile(path)
	if err != nil {
		return config.YAMLProfile{}, fmt.Errorf("failed to load local overlay: %w", err)
	}
	return y, nil
}
