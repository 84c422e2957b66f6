package assign

import (
	"fmt"
	"sort"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

// Modify returns a copy of va with name bound to value. Dependency
// violations introduced by the change are repaired when possible. va is
// never mutated.
func (a *Assigner) Modify(va *domain.VariableAssignment, name string, value any) (*domain.VariableAssignment, error) {
	next := va.Copy()
	if err := setChecked(next, "assign.modify", name, value); err != nil {
		return nil, err
	}

	if violations := DependencyViolations(next); len(violations) > 0 {
		repaired := a.ResolveConflicts(next)
		if len(DependencyViolations(repaired)) > 0 {
			return nil, domain.NewError("assign.modify", domain.KindUnresolvableDependency, name,
				"Modifying variable '%s' to %v creates unresolvable dependency violations: %v", name, value, violations)
		}
		return repaired, nil
	}

	if !next.IsConsistent() {
		return nil, domain.NewError("assign.modify", domain.KindConsistencyViolation, name,
			"Modifying variable '%s' to %v violates consistency constraints", name, value)
	}
	return next, nil
}

// ModifyBatch applies every change or none. Values are checked in name
// order, so the first reported failure is deterministic.
func (a *Assigner) ModifyBatch(va *domain.VariableAssignment, changes map[string]any) (*domain.VariableAssignment, error) {
	names := make([]string, 0, len(changes))
	for n := range changes {
		names = append(names, n)
	}
	sort.Strings(names)

	next := va.Copy()
	for _, n := range names {
		if err := setChecked(next, "assign.modify_batch", n, changes[n]); err != nil {
			return nil, err
		}
	}

	if violations := DependencyViolations(next); len(violations) > 0 {
		repaired := a.ResolveConflicts(next)
		if len(DependencyViolations(repaired)) > 0 {
			return nil, domain.NewError("assign.modify_batch", domain.KindUnresolvableDependency, "",
				"Batch modifications create unresolvable dependency violations: %v", violations)
		}
		return repaired, nil
	}

	if !next.IsConsistent() {
		return nil, domain.NewError("assign.modify_batch", domain.KindConsistencyViolation, "",
			"Batch modifications violate consistency constraints")
	}
	return next, nil
}

func setChecked(va *domain.VariableAssignment, op, name string, value any) error {
	if d, ok := va.Domain(name); ok && !d.IsValid(value) {
		return domain.NewError(op, domain.KindInvalidValue, name,
			"Value %v is not valid for variable '%s' with domain %s", value, name, d.Type)
	}
	if err := va.Set(name, value); err != nil {
		return &domain.OpError{Op: op, Kind: domain.KindInvalidValue, Path: name, Err: err}
	}
	return nil
}

// DependencyViolations lists, for every assigned variable, each dependency
// that is not assigned.
func DependencyViolations(va *domain.VariableAssignment) []string {
	var out []string
	for _, name := range va.DependentNames() {
		if !va.Has(name) {
			continue
		}
		for _, dep := range va.Dependencies(name) {
			if !va.Has(dep) {
				out = append(out, fmt.Sprintf("Variable '%s' depends on '%s' which is not assigned", name, dep))
			}
		}
	}
	return out
}

// ResolveConflicts clears every binding and reassigns the domain variables
// in dependency order. Previous values that are still valid are kept;
// missing ones get the domain sample. Bindings without a domain are carried
// over. If reassignment fails a copy of the input is returned.
func (a *Assigner) ResolveConflicts(va *domain.VariableAssignment) *domain.VariableAssignment {
	if len(DependencyViolations(va)) == 0 {
		return va.Copy()
	}

	previous := va.Assignments()
	out := va.Copy()
	out.ClearAssignments()

	ord := TopologicalSort(out)
	if ord.HadCycle {
		a.log.Warn("assign.resolve.cycle", "variables", len(ord.Order))
	}
	for _, n := range ord.Order {
		d, _ := out.Domain(n)
		if err := out.Set(n, chooseValue(n, d, previous)); err != nil {
			a.log.Warn("assign.resolve.failed", "variable", n, "err", err)
			return va.Copy()
		}
	}
	for n, v := range previous {
		if _, hasDomain := out.Domain(n); hasDomain {
			continue
		}
		if err := out.Set(n, v); err != nil {
			return va.Copy()
		}
	}

	a.log.Debug("assign.resolve.done", "variables", len(ord.Order), "had_cycle", ord.HadCycle)
	return out
}
