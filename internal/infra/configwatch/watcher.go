// Package configwatch reloads a solver profile when its file changes and
// hands the new configuration to a running engine.
package configwatch

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

// Target receives reloaded configurations. The explore engine satisfies it.
type Target interface {
	SetConfiguration(next domain.SolverConfig) error
}

// LoadFunc reads the watched file into a configuration.
type LoadFunc func(path string) (domain.SolverConfig, error)

type Watcher struct {
	path    string
	load    LoadFunc
	target  Target
	log     *slog.Logger
	watcher *fsnotify.Watcher

	// reloaded is signalled after each reload attempt; tests wait on it.
	reloaded chan error
}

type Option func(*Watcher)

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// New watches the directory holding path, so editors that replace the file
// through a rename are still seen.
func New(path string, load LoadFunc, target Target, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &domain.OpError{Op: "configwatch.new", Kind: domain.KindExecution, Path: path, Err: err}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fw.Close()
		return nil, &domain.OpError{Op: "configwatch.new", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, &domain.OpError{Op: "configwatch.new", Kind: domain.KindNotFound, Path: path, Err: err}
	}

	w := &Watcher{
		path:     abs,
		load:     load,
		target:   target,
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		watcher:  fw,
		reloaded: make(chan error, 16),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run handles file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	w.log.Debug("configwatch.started", "path", w.path)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("configwatch.error", "err", err)

		case <-ctx.Done():
			w.log.Debug("configwatch.stopping")
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	err := w.Reload()

	select {
	case w.reloaded <- err:
	default:
	}
}

// Reload reads the file once and applies it. On error the target keeps its
// current configuration.
func (w *Watcher) Reload() error {
	next, err := w.load(w.path)
	if err != nil {
		w.log.Warn("configwatch.reload_failed", "path", w.path, "err", err)
		return err
	}
	if err := w.target.SetConfiguration(next); err != nil {
		w.log.Warn("configwatch.rejected", "path", w.path, "err", err)
		return err
	}
	w.log.Info("configwatch.reload", "path", w.path)
	return nil
}

// Reloaded reports the outcome of each event-triggered reload.
func (w *Watcher) Reloaded() <-chan error { return w.reloaded }

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
