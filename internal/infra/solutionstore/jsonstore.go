package solutionstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

const (
	defaultRunsDir = "runs"
	indexFile      = "index.jsonl"
)

type JSONStore struct {
	rootDir     string
	runsDirName string
	mask        masker
	writeIndex  bool
	now         func() time.Time
}

type Option func(*options)

type options struct {
	index   bool
	now     func() time.Time
	masking *domain.MaskingConfig
}

// WithIndex enables a JSONL index: runs/index.jsonl
func WithIndex(enabled bool) Option {
	return func(o *options) { o.index = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithMasking(cfg domain.MaskingConfig) Option {
	return func(o *options) { o.masking = &cfg }
}

func collect(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewJSONStore(root string, cfg domain.ProjectConfig, opts ...Option) *JSONStore {
	runsDir := cfg.Paths.RunsDir
	if strings.TrimSpace(runsDir) == "" {
		runsDir = defaultRunsDir
	}

	o := collect(opts)
	masking := cfg.Masking
	if o.masking != nil {
		masking = *o.masking
	}

	return &JSONStore{
		rootDir:     root,
		runsDirName: runsDir,
		mask:        newMasker(masking),
		writeIndex:  o.index,
		now:         o.now,
	}
}

var _ Store = (*JSONStore)(nil)

func (s *JSONStore) dir() string {
	return filepath.Join(s.rootDir, s.runsDirName)
}

func (s *JSONStore) SaveRun(run domain.RunArtifact) (string, error) {
	dir := s.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "solutionstore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	toSave := run
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = s.now().UTC()
	}
	id := runID(toSave, s.now)
	toSave.ID = id
	filename := id + ".json"
	path := filepath.Join(dir, filename)

	toSave = s.mask.apply(toSave)

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "solutionstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "solutionstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "solutionstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(dir, filename, toSave.Ref())
	}

	return id, nil
}

type indexEntry struct {
	domain.RunRef
	File string `json:"file"`
}

func (s *JSONStore) appendIndex(dir, filename string, ref domain.RunRef) error {
	line, err := json.Marshal(indexEntry{RunRef: ref, File: filename})
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, indexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// ListRuns returns runs newest first. The index is used when present;
// otherwise every run file is read.
func (s *JSONStore) ListRuns() ([]domain.RunRef, error) {
	refs, err := s.readIndex()
	if err != nil {
		refs, err = s.scan()
		if err != nil {
			return nil, err
		}
	}
	sortRefs(refs)
	return refs, nil
}

func (s *JSONStore) readIndex() ([]domain.RunRef, error) {
	f, err := os.Open(filepath.Join(s.dir(), indexFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var refs []domain.RunRef
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e indexEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, err
		}
		if _, err := os.Stat(filepath.Join(s.dir(), e.File)); err != nil {
			continue
		}
		refs = append(refs, e.RunRef)
	}
	return refs, sc.Err()
}

func (s *JSONStore) scan() ([]domain.RunRef, error) {
	entries, err := os.ReadDir(s.dir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.RunRef{}, nil
		}
		return nil, &domain.OpError{
			Op:   "solutionstore.list",
			Kind: domain.KindExecution,
			Path: s.dir(),
			Err:  err,
		}
	}

	refs := []domain.RunRef{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		run, err := s.LoadRun(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		refs = append(refs, run.Ref())
	}
	return refs, nil
}

func (s *JSONStore) LoadRun(id string) (domain.RunArtifact, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return domain.RunArtifact{}, domain.NewError("solutionstore.load", domain.KindInvalidValue, id, "invalid run id %q", id)
	}

	path := filepath.Join(s.dir(), id+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.RunArtifact{}, &domain.OpError{
			Op:   "solutionstore.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var run domain.RunArtifact
	if err := json.Unmarshal(b, &run); err != nil {
		return domain.RunArtifact{}, &domain.OpError{
			Op:   "solutionstore.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	if run.ID == "" {
		run.ID = id
	}
	return run, nil
}

// DeleteRun removes the run file. Index lines for deleted runs are skipped
// when listing.
func (s *JSONStore) DeleteRun(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return domain.NewError("solutionstore.delete", domain.KindInvalidValue, id, "invalid run id %q", id)
	}
	path := filepath.Join(s.dir(), id+".json")
	if err := os.Remove(path); err != nil {
		kind := domain.KindExecution
		if errors.Is(err, os.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return &domain.OpError{Op: "solutionstore.delete", Kind: kind, Path: path, Err: err}
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }

func sortRefs(refs []domain.RunRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		if !refs[i].StartedAt.Equal(refs[j].StartedAt) {
			return refs[i].StartedAt.After(refs[j].StartedAt)
		}
		return refs[i].ID > refs[j].ID
	})
}
