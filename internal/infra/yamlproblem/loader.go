// Package yamlproblem lists and loads the problem files of a project.
package yamlproblem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/config"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	problemsDir string
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{problemsDir: "problems"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Option func(*Loader)

func WithProblemsDir(dir string) Option {
	return func(l *Loader) { l.problemsDir = dir }
}

var _ ports.ProblemLoader = (*Loader)(nil)

func (l *Loader) LoadProblem(path string) (domain.Problem, error) {
	return config.LoadProblem(path)
}

func (l *Loader) ListProblems(root string) ([]domain.ProblemRef, error) {
	dir := filepath.Join(root, l.problemsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlproblem.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.ProblemRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !isYAML(name) {
			continue
		}

		p := filepath.Join(dir, name)
		n, _ := readProblemName(p)
		if strings.TrimSpace(n) == "" {
			n = strings.TrimSuffix(name, filepath.Ext(name))
		}

		refs = append(refs, domain.ProblemRef{Name: n, Path: p})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Resolve accepts a problem name, a file stem or a path.
func (l *Loader) Resolve(root, nameOrPath string) (string, error) {
	if isYAML(nameOrPath) || strings.ContainsRune(nameOrPath, filepath.Separator) {
		return filepath.Clean(nameOrPath), nil
	}

	refs, err := l.ListProblems(root)
	if err != nil {
		return "", err
	}
	for _, r := range refs {
		stem := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path))
		if r.Name == nameOrPath || stem == nameOrPath || domain.Slugify(r.Name) == nameOrPath {
			return r.Path, nil
		}
	}
	return "", domain.NewError("yamlproblem.resolve", domain.KindNotFound, nameOrPath,
		"no problem named %q in %s", nameOrPath, filepath.Join(root, l.problemsDir))
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func readProblemName(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var v struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return "", err
	}
	return v.Name, nil
}
