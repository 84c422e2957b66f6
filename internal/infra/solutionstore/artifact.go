// Package solutionstore persists exploration runs, either as JSON files under
// the project's runs directory or in an embedded badger database.
package solutionstore

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
)

const maskValue = "********"

// Store is a RunStore that can delete runs and holds resources until
// closed.
type Store interface {
	ports.RunStore
	DeleteRun(id string) error
	io.Closer
}

// Open builds the store selected by the project configuration.
func Open(root string, cfg domain.ProjectConfig, log *slog.Logger) (Store, error) {
	switch cfg.Storage.Backend {
	case domain.StorageBadger:
		dir := cfg.Storage.BadgerDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		return OpenBadger(BadgerConfig{Path: dir, Logger: log}, WithMasking(cfg.Masking))
	case domain.StorageJSON, "":
		return NewJSONStore(root, cfg, WithIndex(true)), nil
	}
	return nil, domain.NewError("solutionstore.open", domain.KindInvalidConfig, "",
		"unsupported storage backend %q", cfg.Storage.Backend)
}

// runID names a run after its start time and problem, plus a short session
// suffix so runs started within the same second do not collide.
func runID(run domain.RunArtifact, now func() time.Time) string {
	ts := run.StartedAt
	if ts.IsZero() {
		ts = now()
	}

	part := run.ProblemName
	if strings.TrimSpace(part) == "" {
		part = strings.TrimSuffix(filepath.Base(run.ProblemPath), filepath.Ext(run.ProblemPath))
	}
	slug := domain.Slugify(part)
	if slug == "" {
		slug = "run"
	}

	id := fmt.Sprintf("%s_%s", ts.UTC().Format("20060102T150405Z"), slug)
	if sid := strings.ReplaceAll(run.Summary.SessionID, "-", ""); sid != "" {
		id += "_" + sid[:min(8, len(sid))]
	}
	return id
}

type masker struct {
	enabled bool
	keys    map[string]bool
}

func newMasker(cfg domain.MaskingConfig) masker {
	m := masker{enabled: cfg.Enabled, keys: map[string]bool{}}
	for _, k := range cfg.Keys {
		m.keys[strings.ToLower(strings.TrimSpace(k))] = true
	}
	return m
}

func (m masker) sensitive(k string) bool {
	kk := strings.ToLower(k)
	if m.keys[kk] {
		return true
	}
	return strings.Contains(kk, "token") ||
		strings.Contains(kk, "secret") ||
		strings.Contains(kk, "password")
}

// apply returns a masked copy; run is not mutated.
func (m masker) apply(run domain.RunArtifact) domain.RunArtifact {
	if !m.enabled {
		return run
	}

	out := run
	out.Solutions = make([]domain.SolutionRecord, 0, len(run.Solutions))
	for _, rec := range run.Solutions {
		c := rec
		c.Metadata = m.maskMap(rec.Metadata)
		c.Variables.Assignments = m.maskMap(rec.Variables.Assignments)
		out.Solutions = append(out.Solutions, c)
	}
	return out
}

func (m masker) maskMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if m.sensitive(k) {
			out[k] = maskValue
			continue
		}
		out[k] = v
	}
	return out
}
