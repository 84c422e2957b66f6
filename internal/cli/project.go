package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/projectfinder"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/solutionstore"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/yamlproblem"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/yamlprofile"
)

type projectCtx struct {
	root string
	cfg  domain.ProjectConfig

	problems *yamlproblem.Loader
	profiles *yamlprofile.Loader
}

func loadProject(projectFlag string) (*projectCtx, error) {
	root, err := resolveProjectRoot(projectFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := projectfinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	return &projectCtx{
		root:     root,
		cfg:      cfg,
		problems: yamlproblem.NewLoader(yamlproblem.WithProblemsDir(cfg.Paths.ProblemsDir)),
		profiles: yamlprofile.NewLoader(root, yamlprofile.WithProfilesDir(cfg.Paths.ProfilesDir)),
	}, nil
}

// openStore opens the configured run store; callers must Close it.
func (p *projectCtx) openStore(log *slog.Logger) (solutionstore.Store, error) {
	return solutionstore.Open(p.root, p.cfg, log)
}

func resolveProjectRoot(projectFlag string) (string, error) {
	if w := strings.TrimSpace(projectFlag); w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid project path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	root, err := projectfinder.NewFinder().FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("project not found from %q (tip: run `sepsolve init`): %w", wd, err)
	}
	return root, nil
}

// resolveProblemPath accepts a path (relative to the project root), a file
// name under the problems directory, a file stem or a problem name.
func resolveProblemPath(p *projectCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("problem is required")
	}

	if looksLikePath(in) {
		path := in
		if !filepath.IsAbs(path) {
			path = filepath.Join(p.root, path)
		}
		return filepath.Clean(path), nil
	}

	if hasYAMLExt(in) {
		path := filepath.Join(p.root, p.cfg.Paths.ProblemsDir, in)
		if fileExists(path) {
			return path, nil
		}
	}

	return p.problems.Resolve(p.root, in)
}

// resolveProfileArg falls back to the project's default profile. Relative
// paths are resolved against the project root.
func resolveProfileArg(p *projectCtx, arg string) string {
	in := strings.TrimSpace(arg)
	if in == "" {
		return p.cfg.Defaults.Profile
	}
	if looksLikePath(in) && !filepath.IsAbs(in) {
		return filepath.Join(p.root, in)
	}
	return in
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
