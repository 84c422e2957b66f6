package explore

import (
	"fmt"
	"sort"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

// Config returns the configuration the next step will use.
func (e *Engine) Config() domain.SolverConfig {
	return *e.cfg.Load()
}

// OnConfigChange registers cb for every later configuration change.
func (e *Engine) OnConfigChange(cb ConfigCallback) {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	e.callbacks = append(e.callbacks, cb)
}

// UpdateConfiguration applies changes to a copy of the current
// configuration, validates the copy and swaps it in. A step already in
// progress keeps the configuration it started with. On error nothing
// changes.
func (e *Engine) UpdateConfiguration(changes map[string]any) error {
	e.cfgMu.Lock()
	cur := *e.cfg.Load()
	if !cur.AllowRuntimeModification {
		e.cfgMu.Unlock()
		return domain.NewError("engine.config.update", domain.KindInvalidConfig, "",
			"runtime configuration modification is disabled")
	}
	next, err := cur.WithChanges(changes)
	if err != nil {
		e.cfgMu.Unlock()
		e.log.Warn("engine.config.rejected", "err", err)
		return err
	}
	diff := e.swap(cur, next)
	e.cfgMu.Unlock()

	e.notify(diff)
	return nil
}

// ApplyPreset switches to a built-in preset on top of the current values.
func (e *Engine) ApplyPreset(name string) error {
	e.cfgMu.Lock()
	cur := *e.cfg.Load()
	next, err := cur.WithPreset(name)
	if err != nil {
		e.cfgMu.Unlock()
		return err
	}
	diff := e.swap(cur, next)
	e.cfgMu.Unlock()

	e.notify(diff)
	return nil
}

// SetConfiguration replaces the whole configuration, as a reloaded profile
// does. allow_runtime_modification of the current configuration still
// applies.
func (e *Engine) SetConfiguration(next domain.SolverConfig) error {
	cur := e.Config()
	changes := map[string]any{}
	for key, pair := range cur.Diff(next) {
		changes[key] = pair[1]
	}
	if len(changes) == 0 {
		return nil
	}
	return e.UpdateConfiguration(changes)
}

// swap must be called with cfgMu held.
func (e *Engine) swap(cur, next domain.SolverConfig) map[string][2]any {
	e.cfg.Store(&next)
	diff := cur.Diff(next)
	e.log.Info("engine.config.updated", "changed", len(diff))
	return diff
}

func (e *Engine) notify(diff map[string][2]any) {
	if len(diff) == 0 {
		return
	}
	e.cfgMu.Lock()
	cbs := append([]ConfigCallback(nil), e.callbacks...)
	e.cfgMu.Unlock()

	keys := make([]string, 0, len(diff))
	for k := range diff {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, cb := range cbs {
			if err := e.callback(cb, k, diff[k][0], diff[k][1]); err != nil {
				e.log.Warn("engine.config.callback_failed", "key", k, "err", err)
			}
		}
	}
}

func (e *Engine) callback(cb ConfigCallback, key string, oldValue, newValue any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()
	return cb(key, oldValue, newValue)
}
