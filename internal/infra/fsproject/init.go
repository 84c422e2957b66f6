// Package fsproject scaffolds a sepsolve project on disk.
package fsproject

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/template"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
)

const gitignoreHeader = "# sepsolve"

type Initializer struct {
	paths domain.PathsConfig
}

type Option func(*Initializer)

// WithPaths scaffolds problems, profiles and runs into the given
// directories instead of the defaults.
func WithPaths(p domain.PathsConfig) Option {
	return func(i *Initializer) { i.paths = p }
}

func NewInitializer(opts ...Option) *Initializer {
	i := &Initializer{paths: domain.DefaultProjectConfig().Paths}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

var _ ports.ProjectInitializer = (*Initializer)(nil)

// Init creates the project layout and renders the embedded templates into
// it. Existing files are kept unless force is set; local overlays are
// written owner-only.
func (i *Initializer) Init(spec domain.ProjectSpec, force bool) error {
	root := filepath.Clean(spec.Root)

	for _, d := range []string{i.paths.ProblemsDir, i.paths.ProfilesDir, i.paths.RunsDir, filepath.Join(".sepsolve", "logs")} {
		dir := filepath.Join(root, d)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &domain.OpError{Op: "fsproject.init", Kind: domain.KindExecution, Path: dir, Err: err}
		}
	}

	if err := i.ensureGitignore(root); err != nil {
		return &domain.OpError{Op: "fsproject.gitignore", Kind: domain.KindExecution, Path: root, Err: err}
	}

	vars := map[string]string{
		"PROJECT":      projectName(spec),
		"PROBLEMS_DIR": filepath.ToSlash(i.paths.ProblemsDir),
		"PROFILES_DIR": filepath.ToSlash(i.paths.ProfilesDir),
		"RUNS_DIR":     filepath.ToSlash(i.paths.RunsDir),
	}

	err := fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		dst := filepath.Join(root, i.target(strings.TrimPrefix(p, "templates/")))
		if !force && fileExists(dst) {
			return nil
		}
		return writeTemplate(p, dst, vars)
	})
	if err != nil {
		return &domain.OpError{Op: "fsproject.init", Kind: domain.KindExecution, Path: root, Err: err}
	}
	return nil
}

// target maps a template path onto the configured layout; the top-level
// problems/ and profiles/ template folders follow the project paths.
func (i *Initializer) target(rel string) string {
	dir, rest, ok := strings.Cut(rel, "/")
	if !ok {
		return filepath.FromSlash(rel)
	}
	switch dir {
	case "problems":
		return filepath.Join(i.paths.ProblemsDir, filepath.FromSlash(rest))
	case "profiles":
		return filepath.Join(i.paths.ProfilesDir, filepath.FromSlash(rest))
	}
	return filepath.FromSlash(rel)
}

func writeTemplate(src, dst string, vars map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	b, err := fs.ReadFile(templatesFS, src)
	if err != nil {
		return err
	}
	rendered, err := template.RenderString(string(b), vars)
	if err != nil {
		return err
	}

	mode := fs.FileMode(0o644)
	if strings.Contains(strings.ToLower(path.Base(src)), ".local.") {
		mode = 0o600
	}
	return os.WriteFile(dst, []byte(rendered), mode)
}

func projectName(spec domain.ProjectSpec) string {
	if n := strings.TrimSpace(spec.Name); n != "" {
		return n
	}
	return filepath.Base(filepath.Clean(spec.Root))
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// gitignoreEntries keeps runs, logs, the badger database and local profile
// overlays out of version control.
func (i *Initializer) gitignoreEntries() []string {
	return []string{
		filepath.ToSlash(filepath.Clean(i.paths.RunsDir)) + "/",
		".sepsolve/",
		filepath.ToSlash(filepath.Clean(i.paths.ProfilesDir)) + "/*.local.yaml",
	}
}

func (i *Initializer) ensureGitignore(root string) error {
	p := filepath.Join(root, ".gitignore")
	b, err := os.ReadFile(p)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	existing := string(b)
	updated := mergeGitignore(existing, i.gitignoreEntries())
	if updated == existing {
		return nil
	}
	return os.WriteFile(p, []byte(updated), 0o644)
}

// mergeGitignore appends the entries missing from content under the
// sepsolve header, adding the header only when it is not there yet.
func mergeGitignore(content string, entries []string) string {
	present := map[string]bool{}
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			present[trimmed] = true
		}
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return content
	}

	var out strings.Builder
	out.WriteString(content)
	if content != "" {
		if !strings.HasSuffix(content, "\n") {
			out.WriteByte('\n')
		}
		out.WriteByte('\n')
	}
	if !present[gitignoreHeader] {
		out.WriteString(gitignoreHeader + "\n")
	}
	for _, e := range missing {
		out.WriteString(e + "\n")
	}
	return out.String()
}
