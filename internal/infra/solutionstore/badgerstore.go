package solutionstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

const (
	runPrefix = "run/"
	refPrefix = "ref/"
)

type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// BadgerStore keeps each run under run/<id> and a small listing entry under
// ref/<id>, so listing never decodes full artifacts.
type BadgerStore struct {
	db   *badger.DB
	mask masker
	now  func() time.Time
}

var _ Store = (*BadgerStore)(nil)

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func OpenBadger(cfg BadgerConfig, opts ...Option) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, domain.NewError("solutionstore.badger", domain.KindInvalidConfig, "",
			"path is required for a persistent database")
	}

	var bopts badger.Options
	if cfg.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, &domain.OpError{Op: "solutionstore.badger", Kind: domain.KindExecution, Path: cfg.Path, Err: err}
		}
		bopts = badger.DefaultOptions(cfg.Path)
	}
	bopts = bopts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		bopts = bopts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		bopts = bopts.WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, &domain.OpError{Op: "solutionstore.badger", Kind: domain.KindExecution, Path: cfg.Path, Err: err}
	}

	o := collect(opts)
	masking := domain.MaskingConfig{Enabled: true}
	if o.masking != nil {
		masking = *o.masking
	}
	return &BadgerStore{db: db, mask: newMasker(masking), now: o.now}, nil
}

func (s *BadgerStore) SaveRun(run domain.RunArtifact) (string, error) {
	toSave := run
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = s.now().UTC()
	}
	id := runID(toSave, s.now)
	toSave.ID = id
	toSave = s.mask.apply(toSave)

	body, err := json.Marshal(toSave)
	if err != nil {
		return "", &domain.OpError{Op: "solutionstore.marshal", Kind: domain.KindExecution, Path: id, Err: err}
	}
	ref, err := json.Marshal(toSave.Ref())
	if err != nil {
		return "", &domain.OpError{Op: "solutionstore.marshal", Kind: domain.KindExecution, Path: id, Err: err}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(runPrefix+id), body); err != nil {
			return err
		}
		return txn.Set([]byte(refPrefix+id), ref)
	})
	if err != nil {
		return "", &domain.OpError{Op: "solutionstore.write", Kind: domain.KindExecution, Path: id, Err: err}
	}
	return id, nil
}

func (s *BadgerStore) ListRuns() ([]domain.RunRef, error) {
	refs := []domain.RunRef{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(refPrefix), PrefetchValues: true, PrefetchSize: 50})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var ref domain.RunRef
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ref)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			refs = append(refs, ref)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.OpError{Op: "solutionstore.list", Kind: domain.KindExecution, Err: err}
	}
	sortRefs(refs)
	return refs, nil
}

func (s *BadgerStore) LoadRun(id string) (domain.RunArtifact, error) {
	var run domain.RunArtifact
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(runPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &run)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.RunArtifact{}, &domain.OpError{Op: "solutionstore.load", Kind: domain.KindNotFound, Path: id, Err: domain.ErrNotFound}
	}
	if err != nil {
		return domain.RunArtifact{}, &domain.OpError{Op: "solutionstore.load", Kind: domain.KindExecution, Path: id, Err: err}
	}
	return run, nil
}

// DeleteRun removes a run and its listing entry.
func (s *BadgerStore) DeleteRun(id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(runPrefix + id)); err != nil {
			return err
		}
		if err := txn.Delete([]byte(runPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(refPrefix + id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return &domain.OpError{Op: "solutionstore.delete", Kind: domain.KindNotFound, Path: id, Err: domain.ErrNotFound}
	}
	if err != nil {
		return &domain.OpError{Op: "solutionstore.delete", Kind: domain.KindExecution, Path: id, Err: err}
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
