package projectfinder

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads sepsolve.yaml from the project root and applies
// defaults for whatever it leaves out.
func LoadConfig(root string) (domain.ProjectConfig, error) {
	cfg := domain.DefaultProjectConfig()

	path := filepath.Join(root, ConfigFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "projectfinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "projectfinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	s := y.Sepsolve
	if s.Masking.Enabled != nil {
		cfg.Masking.Enabled = *s.Masking.Enabled
	}
	cfg.Masking.Keys = append(cfg.Masking.Keys, s.Masking.Keys...)
	if s.Defaults.Profile != "" {
		cfg.Defaults.Profile = s.Defaults.Profile
	}
	if s.Paths.ProblemsDir != "" {
		cfg.Paths.ProblemsDir = s.Paths.ProblemsDir
	}
	if s.Paths.ProfilesDir != "" {
		cfg.Paths.ProfilesDir = s.Paths.ProfilesDir
	}
	if s.Paths.RunsDir != "" {
		cfg.Paths.RunsDir = s.Paths.RunsDir
	}
	if s.Storage.Backend != "" {
		cfg.Storage.Backend = domain.StorageBackend(strings.ToLower(s.Storage.Backend))
	}
	if s.Storage.BadgerDir != "" {
		cfg.Storage.BadgerDir = s.Storage.BadgerDir
	}

	if err := cfg.Validate(); err != nil {
		if oe, ok := err.(*domain.OpError); ok {
			oe.Path = path
		}
		return cfg, err
	}
	return cfg, nil
}

type yamlConfig struct {
	Sepsolve struct {
		Masking struct {
			Enabled *bool    `yaml:"enabled"`
			Keys    []string `yaml:"keys"`
		} `yaml:"masking"`

		Defaults struct {
			Profile string `yaml:"profile"`
		} `yaml:"defaults"`

		Paths struct {
			ProblemsDir string `yaml:"problems_dir"`
			ProfilesDir string `yaml:"profiles_dir"`
			RunsDir     string `yaml:"runs_dir"`
		} `yaml:"paths"`

		Storage struct {
			Backend   string `yaml:"backend"`
			BadgerDir string `yaml:"badger_dir"`
		} `yaml:"storage"`
	} `yaml:"sepsolve"`
}
